package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema if it does not exist. Statements are idempotent
// so startup is safe to repeat.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS channels (
			channel_id              VARCHAR(32) PRIMARY KEY,
			title                   TEXT NOT NULL DEFAULT '',
			subscriber_count        BIGINT NOT NULL DEFAULT 0,
			total_views             BIGINT NOT NULL DEFAULT 0,
			total_videos            BIGINT NOT NULL DEFAULT 0,
			hidden_subscriber_count BOOLEAN NOT NULL DEFAULT FALSE,
			official_artist         BOOLEAN NOT NULL DEFAULT FALSE,
			uploads_playlist_id     VARCHAR(40) NOT NULL DEFAULT '',
			last_upload_at          TIMESTAMPTZ,
			updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS videos (
			channel_id    VARCHAR(32) NOT NULL,
			video_id      VARCHAR(16) NOT NULL,
			title         TEXT NOT NULL DEFAULT '',
			duration_text VARCHAR(32) NOT NULL DEFAULT '',
			upload_date   TIMESTAMPTZ,
			views         BIGINT NOT NULL DEFAULT 0,
			likes         BIGINT NOT NULL DEFAULT 0,
			dislikes      BIGINT,
			topic         TEXT NOT NULL DEFAULT '',
			presenter     TEXT NOT NULL DEFAULT '',
			url           TEXT NOT NULL DEFAULT '',
			is_short      BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (channel_id, video_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_channel_upload
			ON videos (channel_id, upload_date DESC)`,
		`CREATE TABLE IF NOT EXISTS comment_tracking (
			channel_id    VARCHAR(32) NOT NULL,
			video_id      VARCHAR(16) NOT NULL,
			published_at  TIMESTAMPTZ,
			comment_count BIGINT NOT NULL DEFAULT 0,
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (channel_id, video_id)
		)`,
		`CREATE TABLE IF NOT EXISTS channel_aggregates (
			channel_id              VARCHAR(32) PRIMARY KEY,
			comments_total          BIGINT NOT NULL DEFAULT 0,
			last_full_scan_at       TIMESTAMPTZ,
			last_delta_scan_at      TIMESTAMPTZ,
			last_video_published_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS sync_runs (
			id                   BIGSERIAL PRIMARY KEY,
			channel_id           VARCHAR(32) NOT NULL,
			kind                 VARCHAR(8) NOT NULL,
			added_videos         INT NOT NULL DEFAULT 0,
			touched_videos       INT NOT NULL DEFAULT 0,
			comments_delta       BIGINT NOT NULL DEFAULT 0,
			total_comments_after BIGINT NOT NULL DEFAULT 0,
			finished_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_runs_channel
			ON sync_runs (channel_id, finished_at DESC)`,
		`CREATE TABLE IF NOT EXISTS subscriber_history (
			channel_id       VARCHAR(32) NOT NULL,
			subscriber_count BIGINT NOT NULL,
			recorded_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (channel_id, recorded_at)
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id         BIGSERIAL PRIMARY KEY,
			channel_id VARCHAR(32) NOT NULL,
			payload    JSONB NOT NULL,
			taken_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_channel
			ON snapshots (channel_id, taken_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
