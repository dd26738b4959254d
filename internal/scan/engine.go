// Package scan implements the comment reconciliation and delta engine: full
// scans that rebuild a channel's running comment total from ground truth, and
// delta scans that incrementally update it from a bounded target set.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
	"github.com/hiel0122/youtuber-analyzer-go/internal/youtube"
)

// DefaultBackfillWindow is the number of most-recently-known videos a delta
// scan always re-checks, because comment counts keep moving after a video
// stops being new.
const DefaultBackfillWindow = 200

// Lister is the slice of the YouTube client the engine needs.
type Lister interface {
	PlaylistVideoIDs(ctx context.Context, playlistID string) ([]youtube.PlaylistEntry, error)
	VideoStatistics(ctx context.Context, videoIDs []string) ([]youtube.VideoStats, error)
}

// Store is the persistence surface for tracking rows and the channel rollup.
// ApplyScan must commit rows and aggregate atomically.
type Store interface {
	LoadTracking(ctx context.Context, channelID string) (map[string]model.CommentTracking, error)
	Aggregate(ctx context.Context, channelID string) (*model.ChannelAggregate, error)
	HasTracking(ctx context.Context, channelID string) (bool, error)
	ApplyScan(ctx context.Context, rows []model.CommentTracking, agg *model.ChannelAggregate, fullScan bool) error
	TouchDeltaScan(ctx context.Context, channelID string, at time.Time) error
}

// Result summarizes one scan execution.
type Result struct {
	Kind          string
	AddedVideos   int
	TouchedVideos int
	CommentsDelta int64
	TotalAfter    int64
}

// Engine runs full and delta comment scans for one channel at a time.
type Engine struct {
	lister         Lister
	store          Store
	backfillWindow int
	now            func() time.Time
}

func NewEngine(lister Lister, store Store, backfillWindow int) *Engine {
	if backfillWindow <= 0 {
		backfillWindow = DefaultBackfillWindow
	}
	return &Engine{
		lister:         lister,
		store:          store,
		backfillWindow: backfillWindow,
		now:            time.Now,
	}
}

// Scan picks the scan kind: the first sync of a channel (no tracking rows)
// or an explicit request runs a full scan, everything else a delta scan.
func (e *Engine) Scan(ctx context.Context, channelID, playlistID string, forceFull bool) (*Result, error) {
	if forceFull {
		return e.FullScan(ctx, channelID, playlistID)
	}
	tracked, err := e.store.HasTracking(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("check tracking state: %w", err)
	}
	if !tracked {
		return e.FullScan(ctx, channelID, playlistID)
	}
	return e.DeltaScan(ctx, channelID, playlistID)
}

// FullScan re-fetches the entire catalog and rebuilds the running total from
// ground truth. No dependency on prior state.
func (e *Engine) FullScan(ctx context.Context, channelID, playlistID string) (*Result, error) {
	known, err := e.store.LoadTracking(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("load tracking: %w", err)
	}

	entries, err := e.lister.PlaylistVideoIDs(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	stats, err := e.lister.VideoStatistics(ctx, entryIDs(entries))
	if err != nil {
		return nil, fmt.Errorf("fetch statistics: %w", err)
	}

	now := e.now()
	var total int64
	added := 0
	rows := make([]model.CommentTracking, 0, len(stats))
	var lastPublished *time.Time

	for _, vs := range stats {
		total += vs.CommentCount
		if _, ok := known[vs.VideoID]; !ok {
			added++
		}
		rows = append(rows, model.CommentTracking{
			ChannelID:    channelID,
			VideoID:      vs.VideoID,
			PublishedAt:  vs.PublishedAt,
			CommentCount: vs.CommentCount,
		})
		if !vs.PublishedAt.IsZero() && (lastPublished == nil || vs.PublishedAt.After(*lastPublished)) {
			published := vs.PublishedAt
			lastPublished = &published
		}
	}

	agg := &model.ChannelAggregate{
		ChannelID:            channelID,
		CommentsTotal:        total,
		LastFullScanAt:       &now,
		LastDeltaScanAt:      &now,
		LastVideoPublishedAt: lastPublished,
	}
	if err := e.store.ApplyScan(ctx, rows, agg, true); err != nil {
		return nil, fmt.Errorf("apply full scan: %w", err)
	}

	log.Info().Str("channel_id", channelID).Int("videos", len(rows)).
		Int64("comments_total", total).Msg("full comment scan complete")

	return &Result{
		Kind:          model.ScanKindFull,
		AddedVideos:   added,
		TouchedVideos: len(rows),
		CommentsDelta: total,
		TotalAfter:    total,
	}, nil
}

// DeltaScan fetches statistics for a bounded target set and applies the
// summed per-video delta to the stored running total. The target set is the
// union of the most recent backfillWindow feed entries and every brand-new
// video ID absent from the known set; per-sync API cost is therefore bounded
// independent of channel size.
func (e *Engine) DeltaScan(ctx context.Context, channelID, playlistID string) (*Result, error) {
	known, err := e.store.LoadTracking(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("load tracking: %w", err)
	}

	entries, err := e.lister.PlaylistVideoIDs(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	target := targetSet(entries, known, e.backfillWindow)
	now := e.now()
	prior, err := e.store.Aggregate(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("load aggregate: %w", err)
	}

	if len(target) == 0 {
		// Nothing new and nothing inside the window: record the scan time
		// and return a zero delta so rapid repeated syncs stay idempotent.
		if err := e.store.TouchDeltaScan(ctx, channelID, now); err != nil {
			return nil, fmt.Errorf("touch delta scan: %w", err)
		}
		return &Result{Kind: model.ScanKindDelta, TotalAfter: prior.CommentsTotal}, nil
	}

	stats, err := e.lister.VideoStatistics(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch statistics: %w", err)
	}

	var delta int64
	added := 0
	rows := make([]model.CommentTracking, 0, len(stats))

	for _, vs := range stats {
		var knownCount int64
		if prev, ok := known[vs.VideoID]; ok {
			knownCount = prev.CommentCount
		} else {
			added++
		}
		// Can go negative on platform-side comment deletions. Not clamped;
		// the running total is allowed to decrease.
		delta += vs.CommentCount - knownCount
		rows = append(rows, model.CommentTracking{
			ChannelID:    channelID,
			VideoID:      vs.VideoID,
			PublishedAt:  vs.PublishedAt,
			CommentCount: vs.CommentCount,
		})
	}

	var lastPublished *time.Time
	for _, entry := range entries {
		if !entry.PublishedAt.IsZero() && (lastPublished == nil || entry.PublishedAt.After(*lastPublished)) {
			published := entry.PublishedAt
			lastPublished = &published
		}
	}

	totalAfter := prior.CommentsTotal + delta
	agg := &model.ChannelAggregate{
		ChannelID:            channelID,
		CommentsTotal:        totalAfter,
		LastDeltaScanAt:      &now,
		LastVideoPublishedAt: lastPublished,
	}
	if err := e.store.ApplyScan(ctx, rows, agg, false); err != nil {
		return nil, fmt.Errorf("apply delta scan: %w", err)
	}

	log.Info().Str("channel_id", channelID).Int("target", len(target)).
		Int("new_videos", added).Int64("comments_delta", delta).
		Int64("comments_total", totalAfter).Msg("delta comment scan complete")

	return &Result{
		Kind:          model.ScanKindDelta,
		AddedVideos:   added,
		TouchedVideos: len(rows),
		CommentsDelta: delta,
		TotalAfter:    totalAfter,
	}, nil
}

// targetSet builds the delta-scan targets: the first window feed entries plus
// every feed entry missing from the known set, deduplicated in feed order.
func targetSet(entries []youtube.PlaylistEntry, known map[string]model.CommentTracking, window int) []string {
	seen := make(map[string]struct{}, len(entries))
	var target []string
	for i, entry := range entries {
		_, isKnown := known[entry.VideoID]
		if i >= window && isKnown {
			continue
		}
		if _, dup := seen[entry.VideoID]; dup {
			continue
		}
		seen[entry.VideoID] = struct{}{}
		target = append(target, entry.VideoID)
	}
	return target
}

func entryIDs(entries []youtube.PlaylistEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.VideoID)
	}
	return ids
}
