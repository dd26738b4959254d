package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
)

type ChannelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

// FindByChannelID returns a single channel by its ID.
func (r *ChannelRepo) FindByChannelID(ctx context.Context, channelID string) (*model.Channel, error) {
	query := `
		SELECT channel_id, title, subscriber_count, total_views, total_videos,
		       hidden_subscriber_count, official_artist, uploads_playlist_id,
		       last_upload_at, updated_at
		FROM channels
		WHERE channel_id = $1`

	var ch model.Channel
	err := r.pool.QueryRow(ctx, query, channelID).Scan(
		&ch.ChannelID, &ch.Title, &ch.SubscriberCount, &ch.TotalViews, &ch.TotalVideos,
		&ch.HiddenSubscriberCount, &ch.OfficialArtist, &ch.UploadsPlaylistID,
		&ch.LastUploadAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// Upsert writes the latest observed channel identity and statistics.
// Created on first resolution, updated on every sync, never deleted.
func (r *ChannelRepo) Upsert(ctx context.Context, ch *model.Channel) error {
	query := `
		INSERT INTO channels (channel_id, title, subscriber_count, total_views, total_videos,
		                      hidden_subscriber_count, official_artist, uploads_playlist_id,
		                      last_upload_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (channel_id) DO UPDATE SET
			title = EXCLUDED.title,
			subscriber_count = EXCLUDED.subscriber_count,
			total_views = EXCLUDED.total_views,
			total_videos = EXCLUDED.total_videos,
			hidden_subscriber_count = EXCLUDED.hidden_subscriber_count,
			official_artist = EXCLUDED.official_artist,
			uploads_playlist_id = CASE WHEN EXCLUDED.uploads_playlist_id <> ''
				THEN EXCLUDED.uploads_playlist_id ELSE channels.uploads_playlist_id END,
			last_upload_at = EXCLUDED.last_upload_at,
			updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query,
		ch.ChannelID, ch.Title, ch.SubscriberCount, ch.TotalViews, ch.TotalVideos,
		ch.HiddenSubscriberCount, ch.OfficialArtist, ch.UploadsPlaylistID, ch.LastUploadAt,
	)
	return err
}

// UploadsPlaylistID returns the cached uploads playlist reference, or an
// empty string if the channel is unknown or the reference was never resolved.
func (r *ChannelRepo) UploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	var playlistID string
	err := r.pool.QueryRow(ctx,
		`SELECT uploads_playlist_id FROM channels WHERE channel_id = $1`,
		channelID).Scan(&playlistID)
	if err != nil {
		return "", err
	}
	return playlistID, nil
}

// RecordSubscribers appends one subscriber-count snapshot.
func (r *ChannelRepo) RecordSubscribers(ctx context.Context, channelID string, count int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO subscriber_history (channel_id, subscriber_count, recorded_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (channel_id, recorded_at) DO NOTHING`,
		channelID, count, at)
	return err
}

// SubscriberHistory returns snapshots for a channel since the given time,
// oldest first.
func (r *ChannelRepo) SubscriberHistory(ctx context.Context, channelID string, since time.Time) ([]model.SubscriberPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT channel_id, subscriber_count, recorded_at
		FROM subscriber_history
		WHERE channel_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC`,
		channelID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []model.SubscriberPoint
	for rows.Next() {
		var p model.SubscriberPoint
		if err := rows.Scan(&p.ChannelID, &p.SubscriberCount, &p.RecordedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
