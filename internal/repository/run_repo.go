package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
)

// RunRepo writes the append-only sync audit log.
type RunRepo struct {
	pool *pgxpool.Pool
}

func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Record appends one sync run.
func (r *RunRepo) Record(ctx context.Context, run *model.SyncRun) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sync_runs (channel_id, kind, added_videos, touched_videos,
		                       comments_delta, total_comments_after, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ChannelID, run.Kind, run.AddedVideos, run.TouchedVideos,
		run.CommentsDelta, run.TotalCommentsAfter, run.FinishedAt)
	return err
}

// ListByChannel returns the most recent runs for a channel, newest first.
func (r *RunRepo) ListByChannel(ctx context.Context, channelID string, limit int) ([]model.SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, channel_id, kind, added_videos, touched_videos,
		       comments_delta, total_comments_after, finished_at
		FROM sync_runs
		WHERE channel_id = $1
		ORDER BY finished_at DESC
		LIMIT $2`,
		channelID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		var run model.SyncRun
		err := rows.Scan(&run.ID, &run.ChannelID, &run.Kind, &run.AddedVideos,
			&run.TouchedVideos, &run.CommentsDelta, &run.TotalCommentsAfter, &run.FinishedAt)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
