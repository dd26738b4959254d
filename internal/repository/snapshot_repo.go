package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
)

// SnapshotRepo persists point-in-time snapshot blobs for history replay.
type SnapshotRepo struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

// Save appends a snapshot as a JSONB payload.
func (r *SnapshotRepo) Save(ctx context.Context, snap *model.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO snapshots (channel_id, payload, taken_at)
		VALUES ($1, $2, $3)`,
		snap.ChannelID, payload, snap.TakenAt)
	return err
}

// Latest returns the most recent snapshot for a channel. pgx.ErrNoRows is
// returned verbatim when none exists.
func (r *SnapshotRepo) Latest(ctx context.Context, channelID string) (*model.Snapshot, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT payload
		FROM snapshots
		WHERE channel_id = $1
		ORDER BY taken_at DESC
		LIMIT 1`,
		channelID).Scan(&payload)
	if err != nil {
		return nil, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
