package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
)

// ReadPageSize is the page size used when reading videos back for display.
const ReadPageSize = 1000

var videoRowsUpserted = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "ytanalyzer_video_rows_upserted_total",
	Help: "Total video rows written by sync upserts.",
})

func init() {
	prometheus.MustRegister(videoRowsUpserted)
}

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

// UpsertBatch writes the fetched video rows with insert-or-replace semantics
// keyed by (channel_id, video_id). The full row is always overwritten with
// the latest observed values; no delta computation happens here.
func (r *VideoRepo) UpsertBatch(ctx context.Context, videos []model.Video) (int, error) {
	if len(videos) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO videos (channel_id, video_id, title, duration_text, upload_date,
		                    views, likes, dislikes, topic, presenter, url, is_short, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (channel_id, video_id) DO UPDATE SET
			title = EXCLUDED.title,
			duration_text = EXCLUDED.duration_text,
			upload_date = EXCLUDED.upload_date,
			views = EXCLUDED.views,
			likes = EXCLUDED.likes,
			dislikes = EXCLUDED.dislikes,
			topic = EXCLUDED.topic,
			presenter = EXCLUDED.presenter,
			url = EXCLUDED.url,
			is_short = EXCLUDED.is_short,
			updated_at = NOW()`

	for _, v := range videos {
		batch.Queue(query,
			v.ChannelID, v.VideoID, v.Title, v.DurationText, v.UploadDate,
			v.Views, v.Likes, v.Dislikes, v.Topic, v.Presenter, v.URL, v.IsShort,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for range videos {
		if _, err := results.Exec(); err != nil {
			videoRowsUpserted.Add(float64(written))
			return written, err
		}
		written++
	}
	videoRowsUpserted.Add(float64(written))
	return written, nil
}

// CountByChannel returns the exact number of persisted video rows for a
// channel. This is the progress read model polled during an active sync.
func (r *VideoRepo) CountByChannel(ctx context.Context, channelID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM videos WHERE channel_id = $1`,
		channelID).Scan(&count)
	return count, err
}

// ListByChannel returns one display page of a channel's videos, newest first.
// Page numbering starts at 0.
func (r *VideoRepo) ListByChannel(ctx context.Context, channelID string, page int) (*model.VideoPage, error) {
	if page < 0 {
		page = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT channel_id, video_id, title, duration_text, upload_date,
		       views, likes, dislikes, topic, presenter, url, is_short, updated_at
		FROM videos
		WHERE channel_id = $1
		ORDER BY upload_date DESC NULLS LAST, video_id
		LIMIT $2 OFFSET $3`,
		channelID, ReadPageSize+1, page*ReadPageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []model.Video
	for rows.Next() {
		var v model.Video
		err := rows.Scan(
			&v.ChannelID, &v.VideoID, &v.Title, &v.DurationText, &v.UploadDate,
			&v.Views, &v.Likes, &v.Dislikes, &v.Topic, &v.Presenter, &v.URL,
			&v.IsShort, &v.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(videos) > ReadPageSize
	if hasMore {
		videos = videos[:ReadPageSize]
	}
	return &model.VideoPage{Videos: videos, Page: page, HasMore: hasMore}, nil
}

// ListAllByChannel reads the full persisted dataset for a channel in
// ReadPageSize pages. Used by the hydration phase to recompute statistics.
func (r *VideoRepo) ListAllByChannel(ctx context.Context, channelID string) ([]model.Video, error) {
	var all []model.Video
	for page := 0; ; page++ {
		p, err := r.ListByChannel(ctx, channelID, page)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Videos...)
		if !p.HasMore {
			return all, nil
		}
	}
}
