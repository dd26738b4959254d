package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

// LoadTracking returns all known comment-tracking records for a channel,
// keyed by video ID.
func (r *CommentRepo) LoadTracking(ctx context.Context, channelID string) (map[string]model.CommentTracking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT channel_id, video_id, published_at, comment_count, updated_at
		FROM comment_tracking
		WHERE channel_id = $1`,
		channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	known := make(map[string]model.CommentTracking)
	for rows.Next() {
		var t model.CommentTracking
		var publishedAt *time.Time
		if err := rows.Scan(&t.ChannelID, &t.VideoID, &publishedAt, &t.CommentCount, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if publishedAt != nil {
			t.PublishedAt = *publishedAt
		}
		known[t.VideoID] = t
	}
	return known, rows.Err()
}

// Aggregate returns the channel rollup, or a zero-valued aggregate when the
// channel has never been scanned.
func (r *CommentRepo) Aggregate(ctx context.Context, channelID string) (*model.ChannelAggregate, error) {
	query := `
		SELECT channel_id, comments_total, last_full_scan_at, last_delta_scan_at,
		       last_video_published_at
		FROM channel_aggregates
		WHERE channel_id = $1`

	var agg model.ChannelAggregate
	err := r.pool.QueryRow(ctx, query, channelID).Scan(
		&agg.ChannelID, &agg.CommentsTotal, &agg.LastFullScanAt,
		&agg.LastDeltaScanAt, &agg.LastVideoPublishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &model.ChannelAggregate{ChannelID: channelID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// HasTracking reports whether any tracking rows exist for the channel, which
// decides full scan vs delta scan.
func (r *CommentRepo) HasTracking(ctx context.Context, channelID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM comment_tracking WHERE channel_id = $1)`,
		channelID).Scan(&exists)
	return exists, err
}

// ApplyScan commits the per-video tracking rows and the channel aggregate in
// a single transaction. A crash can therefore never leave the rows updated
// while the running total still reflects the old baseline.
func (r *CommentRepo) ApplyScan(ctx context.Context, trackingRows []model.CommentTracking, agg *model.ChannelAggregate, fullScan bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	upsert := `
		INSERT INTO comment_tracking (channel_id, video_id, published_at, comment_count, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (channel_id, video_id) DO UPDATE SET
			published_at = EXCLUDED.published_at,
			comment_count = EXCLUDED.comment_count,
			updated_at = NOW()`

	for _, t := range trackingRows {
		var publishedAt *time.Time
		if !t.PublishedAt.IsZero() {
			publishedAt = &t.PublishedAt
		}
		if _, err := tx.Exec(ctx, upsert, t.ChannelID, t.VideoID, publishedAt, t.CommentCount); err != nil {
			return err
		}
	}

	// last_full_scan_at is only ever set by a full scan.
	aggUpsert := `
		INSERT INTO channel_aggregates (channel_id, comments_total, last_full_scan_at,
		                                last_delta_scan_at, last_video_published_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (channel_id) DO UPDATE SET
			comments_total = EXCLUDED.comments_total,
			last_full_scan_at = CASE WHEN $6 THEN EXCLUDED.last_full_scan_at
				ELSE channel_aggregates.last_full_scan_at END,
			last_delta_scan_at = EXCLUDED.last_delta_scan_at,
			last_video_published_at = GREATEST(
				COALESCE(EXCLUDED.last_video_published_at, channel_aggregates.last_video_published_at),
				COALESCE(channel_aggregates.last_video_published_at, EXCLUDED.last_video_published_at))`

	_, err = tx.Exec(ctx, aggUpsert,
		agg.ChannelID, agg.CommentsTotal, agg.LastFullScanAt,
		agg.LastDeltaScanAt, agg.LastVideoPublishedAt, fullScan,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// TouchDeltaScan records a zero-delta scan: only last_delta_scan_at moves.
func (r *CommentRepo) TouchDeltaScan(ctx context.Context, channelID string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO channel_aggregates (channel_id, last_delta_scan_at)
		VALUES ($1, $2)
		ON CONFLICT (channel_id) DO UPDATE SET last_delta_scan_at = EXCLUDED.last_delta_scan_at`,
		channelID, at)
	return err
}
