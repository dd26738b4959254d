package service

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RefreshWorker is a periodic background job that records fresh subscriber
// counts for known channels. Subscription-rate windows need regular history
// points even when nobody triggers a sync.
type RefreshWorker struct {
	pool     *pgxpool.Pool
	channels ChannelStore
	resolver Resolver
	interval time.Duration
	stopCh   chan struct{}
}

// NewRefreshWorker creates a worker that ticks every interval.
func NewRefreshWorker(pool *pgxpool.Pool, channels ChannelStore, resolver Resolver, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		pool:     pool,
		channels: channels,
		resolver: resolver,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic refresh loop.
// It runs one tick immediately, then every interval.
func (w *RefreshWorker) Start(ctx context.Context) {
	log.Printf("refresh-worker: starting (interval=%s)", w.interval)

	// Run once immediately on startup
	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Println("refresh-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Println("refresh-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *RefreshWorker) Stop() {
	close(w.stopCh)
}

// tick runs one cycle: record a subscriber point for every channel that does
// not already have one from the current interval.
func (w *RefreshWorker) tick(ctx context.Context) {
	start := time.Now()

	refreshed, skipped, err := w.refreshAll(ctx)
	if err != nil {
		log.Printf("refresh-worker: error: %v", err)
		return
	}

	elapsed := time.Since(start)
	log.Printf("refresh-worker: tick complete — %d channels refreshed, %d up to date (%s)",
		refreshed, skipped, elapsed.Round(time.Millisecond))
}

// refreshAll refreshes every known channel whose newest subscriber point is
// older than the worker interval.
func (w *RefreshWorker) refreshAll(ctx context.Context) (refreshed, skipped int, err error) {
	rows, err := w.pool.Query(ctx, `
		SELECT c.channel_id
		FROM channels c
		LEFT JOIN LATERAL (
			SELECT recorded_at
			FROM subscriber_history h
			WHERE h.channel_id = c.channel_id
			ORDER BY recorded_at DESC
			LIMIT 1
		) latest ON TRUE
		WHERE latest.recorded_at IS NULL OR latest.recorded_at < NOW() - make_interval(secs => $1)`,
		w.interval.Seconds())
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	var channelIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, 0, err
		}
		channelIDs = append(channelIDs, id)
	}
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}

	var total int
	err = w.pool.QueryRow(ctx, `SELECT COUNT(*) FROM channels`).Scan(&total)
	if err != nil {
		return 0, 0, err
	}
	skipped = total - len(channelIDs)

	for _, chID := range channelIDs {
		if err := w.refreshChannel(ctx, chID); err != nil {
			log.Printf("refresh-worker: error refreshing %s: %v", chID, err)
			continue
		}
		refreshed++
	}

	return refreshed, skipped, nil
}

// refreshChannel fetches current statistics for one channel and records a
// subscriber point. One API unit per channel.
func (w *RefreshWorker) refreshChannel(ctx context.Context, channelID string) error {
	info, err := w.resolver.ResolveChannel(ctx, channelID)
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx, `
		UPDATE channels
		SET subscriber_count = $1, total_views = $2, total_videos = $3, updated_at = NOW()
		WHERE channel_id = $4`,
		info.SubscriberCount, info.ViewCount, info.VideoCount, channelID)
	if err != nil {
		return err
	}

	return w.channels.RecordSubscribers(ctx, channelID, info.SubscriberCount, time.Now())
}
