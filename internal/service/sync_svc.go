package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
	"github.com/hiel0122/youtuber-analyzer-go/internal/scan"
	"github.com/hiel0122/youtuber-analyzer-go/internal/stats"
	"github.com/hiel0122/youtuber-analyzer-go/internal/youtube"
	"github.com/hiel0122/youtuber-analyzer-go/pkg/videotime"
)

// DefaultTotalEstimate is used for progress when channel resolution fails:
// a failed estimate never blocks a sync from starting.
const DefaultTotalEstimate = 500

// Resolver is the channel-resolution slice of the YouTube client.
type Resolver interface {
	ResolveChannel(ctx context.Context, input string) (*youtube.ChannelInfo, error)
}

// Fetcher is the upload-feed and statistics slice of the YouTube client.
type Fetcher interface {
	PlaylistVideoIDs(ctx context.Context, playlistID string) ([]youtube.PlaylistEntry, error)
	VideoStatistics(ctx context.Context, videoIDs []string) ([]youtube.VideoStats, error)
}

// Scanner runs comment full/delta scans.
type Scanner interface {
	Scan(ctx context.Context, channelID, playlistID string, forceFull bool) (*scan.Result, error)
}

// ChannelStore persists channel identity and subscriber history.
type ChannelStore interface {
	Upsert(ctx context.Context, ch *model.Channel) error
	FindByChannelID(ctx context.Context, channelID string) (*model.Channel, error)
	UploadsPlaylistID(ctx context.Context, channelID string) (string, error)
	RecordSubscribers(ctx context.Context, channelID string, count int64, at time.Time) error
	SubscriberHistory(ctx context.Context, channelID string, since time.Time) ([]model.SubscriberPoint, error)
}

// VideoStore persists and reads back video rows.
type VideoStore interface {
	UpsertBatch(ctx context.Context, videos []model.Video) (int, error)
	CountByChannel(ctx context.Context, channelID string) (int64, error)
	ListAllByChannel(ctx context.Context, channelID string) ([]model.Video, error)
}

// TrackingReader reads comment-tracking rows for aggregation.
type TrackingReader interface {
	LoadTracking(ctx context.Context, channelID string) (map[string]model.CommentTracking, error)
}

// RunLog appends sync audit records.
type RunLog interface {
	Record(ctx context.Context, run *model.SyncRun) error
}

// SnapshotSink persists completed-sync snapshots.
type SnapshotSink interface {
	Save(ctx context.Context, snap *model.Snapshot) error
	InvalidateChannel(ctx context.Context, channelID string) error
}

// SyncService coordinates resolver, fetcher, scan engine and aggregation as
// one logical sync per channel. Concurrent syncs of the same channel attach
// to the in-flight run instead of starting a duplicate crawl.
type SyncService struct {
	resolver  Resolver
	fetcher   Fetcher
	scanner   Scanner
	channels  ChannelStore
	videos    VideoStore
	tracking  TrackingReader
	runs      RunLog
	snapshots SnapshotSink
	tagger    stats.Tagger
	tracker   *ProgressTracker

	pollInterval time.Duration
	group        singleflight.Group
	now          func() time.Time
}

func NewSyncService(
	resolver Resolver,
	fetcher Fetcher,
	scanner Scanner,
	channels ChannelStore,
	videos VideoStore,
	tracking TrackingReader,
	runs RunLog,
	snapshots SnapshotSink,
	tagger stats.Tagger,
	tracker *ProgressTracker,
	pollInterval time.Duration,
) *SyncService {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &SyncService{
		resolver:     resolver,
		fetcher:      fetcher,
		scanner:      scanner,
		channels:     channels,
		videos:       videos,
		tracking:     tracking,
		runs:         runs,
		snapshots:    snapshots,
		tagger:       tagger,
		tracker:      tracker,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Stats recomputes derived statistics from the persisted dataset, independent
// of any stored snapshot.
func (s *SyncService) Stats(ctx context.Context, channelID string) (*model.DerivedStats, error) {
	ch, err := s.channels.FindByChannelID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return s.aggregate(ctx, channelID, ch.SubscriberCount)
}

// Progress returns the polling read model for a channel.
func (s *SyncService) Progress(channelID string) (model.SyncProgress, bool) {
	return s.tracker.Get(channelID)
}

// Sync runs one full sync pipeline for the referenced channel. Resolution
// failures degrade the progress estimate but never block the start; all other
// failures surface in the response with progress reset to zero.
func (s *SyncService) Sync(ctx context.Context, channelKey string, fullSync bool) *model.SyncResponse {
	info, err := s.resolver.ResolveChannel(ctx, channelKey)

	estimated := int64(DefaultTotalEstimate)
	flightKey := flightKeyFor(channelKey)
	if err != nil {
		log.Warn().Err(err).Str("channel", channelKey).
			Msg("channel resolution failed, proceeding with default estimate")
	} else {
		estimated = info.VideoCount
		flightKey = info.ChannelID
	}

	res, runErr, _ := s.group.Do(flightKey, func() (interface{}, error) {
		return s.run(ctx, flightKey, channelKey, info, estimated, fullSync)
	})
	if runErr != nil {
		return &model.SyncResponse{OK: false, Error: runErr.Error()}
	}
	return res.(*model.SyncResponse)
}

// run executes the phases resolving → fetching → reconciling → aggregating.
// It returns a failure response rather than an error so attached callers all
// receive the same payload.
func (s *SyncService) run(ctx context.Context, flightKey, channelKey string, info *youtube.ChannelInfo, estimated int64, fullSync bool) (*model.SyncResponse, error) {
	start := s.now()
	progressKey := flightKey
	s.tracker.Begin(progressKey, estimated)

	s.tracker.SetStatus(progressKey, model.SyncStatusResolving)
	if info == nil {
		// The estimate call failed; the sync itself still needs an identity.
		resolved, err := s.resolver.ResolveChannel(ctx, channelKey)
		if err != nil {
			return s.fail(progressKey, fmt.Errorf("resolve channel: %w", err)), nil
		}
		info = resolved
	}
	channelID := info.ChannelID

	// Progress is polled by canonical channel ID, so a run registered under a
	// handle or URL moves to the resolved ID as soon as it is known.
	if progressKey != channelID {
		s.tracker.Rekey(progressKey, channelID)
		progressKey = channelID
	}

	now := s.now()
	channel := &model.Channel{
		ChannelID:             channelID,
		Title:                 info.Title,
		SubscriberCount:       info.SubscriberCount,
		TotalViews:            info.ViewCount,
		TotalVideos:           info.VideoCount,
		HiddenSubscriberCount: info.HiddenSubscriberCount,
		OfficialArtist:        info.OfficialArtist,
		UploadsPlaylistID:     info.UploadsPlaylistID,
	}
	if err := s.channels.Upsert(ctx, channel); err != nil {
		return s.fail(progressKey, fmt.Errorf("persist channel: %w", err)), nil
	}
	if err := s.channels.RecordSubscribers(ctx, channelID, info.SubscriberCount, now); err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Msg("subscriber snapshot failed")
	}

	// The poll ticker is scoped to this run: acquired here, released on
	// every exit path.
	pollCtx, stopPoll := context.WithCancel(ctx)
	defer stopPoll()
	go s.pollProgress(pollCtx, channelID)

	s.tracker.SetStatus(progressKey, model.SyncStatusFetching)
	playlistID := info.UploadsPlaylistID
	if playlistID == "" {
		cached, err := s.channels.UploadsPlaylistID(ctx, channelID)
		if err != nil || cached == "" {
			return s.fail(progressKey, fmt.Errorf("no uploads playlist for channel %s", channelID)), nil
		}
		playlistID = cached
	}

	inserted, lastUpload, err := s.syncVideos(ctx, channelID, playlistID, info.OfficialArtist)
	if err != nil {
		return s.fail(progressKey, fmt.Errorf("sync videos: %w", err)), nil
	}
	if lastUpload != nil {
		channel.LastUploadAt = lastUpload
		if err := s.channels.Upsert(ctx, channel); err != nil {
			log.Warn().Err(err).Str("channel_id", channelID).Msg("last-upload update failed")
		}
	}

	// Comment scanning is a best-effort enrichment: a failure here must not
	// abort the primary video sync.
	s.tracker.SetStatus(progressKey, model.SyncStatusReconciling)
	scanRes, scanErr := s.scanner.Scan(ctx, channelID, playlistID, fullSync)
	if scanErr != nil {
		log.Warn().Err(scanErr).Str("channel_id", channelID).Msg("comment scan failed")
	} else {
		run := &model.SyncRun{
			ChannelID:          channelID,
			Kind:               scanRes.Kind,
			AddedVideos:        scanRes.AddedVideos,
			TouchedVideos:      scanRes.TouchedVideos,
			CommentsDelta:      scanRes.CommentsDelta,
			TotalCommentsAfter: scanRes.TotalAfter,
			FinishedAt:         s.now(),
		}
		if err := s.runs.Record(ctx, run); err != nil {
			log.Warn().Err(err).Str("channel_id", channelID).Msg("sync run audit failed")
		}
	}

	s.tracker.SetStatus(progressKey, model.SyncStatusAggregating)
	derived, err := s.aggregate(ctx, channelID, info.SubscriberCount)
	if err != nil {
		return s.fail(progressKey, fmt.Errorf("aggregate statistics: %w", err)), nil
	}

	snap := &model.Snapshot{
		ChannelID: channelID,
		Channel:   *channel,
		Stats:     *derived,
		TakenAt:   s.now(),
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Msg("snapshot save failed")
	}
	if err := s.snapshots.InvalidateChannel(ctx, channelID); err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Msg("channel cache invalidate failed")
	}

	s.tracker.Complete(progressKey)
	log.Info().Str("channel_id", channelID).Int("videos", inserted).
		Dur("elapsed", s.now().Sub(start)).Msg("sync complete")

	return &model.SyncResponse{
		OK:                true,
		ChannelID:         channelID,
		InsertedOrUpdated: inserted,
		UploadFrequency:   &derived.UploadFrequency,
		SubscriptionRates: &derived.SubscriptionRates,
		CommentStats:      &derived.CommentStats,
	}, nil
}

// syncVideos fetches the full catalog and upserts one row per video.
func (s *SyncService) syncVideos(ctx context.Context, channelID, playlistID string, officialArtist bool) (int, *time.Time, error) {
	entries, err := s.fetcher.PlaylistVideoIDs(ctx, playlistID)
	if err != nil {
		return 0, nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.VideoID)
	}
	videoStats, err := s.fetcher.VideoStatistics(ctx, ids)
	if err != nil {
		return 0, nil, err
	}

	rows := make([]model.Video, 0, len(videoStats))
	var lastUpload *time.Time
	for _, vs := range videoStats {
		url := "https://www.youtube.com/watch?v=" + vs.VideoID
		seconds, _ := videotime.ParseSeconds(vs.Duration)
		rows = append(rows, model.Video{
			VideoID:      vs.VideoID,
			ChannelID:    channelID,
			Title:        vs.Title,
			DurationText: vs.Duration,
			UploadDate:   vs.PublishedAt,
			Views:        vs.ViewCount,
			Likes:        vs.LikeCount,
			URL:          url,
			IsShort: videotime.IsShort(videotime.ClassifyInput{
				DurationSeconds: seconds,
				PublishedAt:     vs.PublishedAt,
				URL:             url,
				OfficialArtist:  officialArtist,
			}),
		})
		if !vs.PublishedAt.IsZero() && (lastUpload == nil || vs.PublishedAt.After(*lastUpload)) {
			published := vs.PublishedAt
			lastUpload = &published
		}
	}

	inserted, err := s.videos.UpsertBatch(ctx, rows)
	if err != nil {
		return inserted, lastUpload, err
	}
	return inserted, lastUpload, nil
}

// aggregate reloads the persisted dataset and computes derived statistics.
func (s *SyncService) aggregate(ctx context.Context, channelID string, currentSubscribers int64) (*model.DerivedStats, error) {
	videos, err := s.videos.ListAllByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dates := make([]time.Time, 0, len(videos))
	shorts := 0
	for _, v := range videos {
		dates = append(dates, v.UploadDate)
		if v.IsShort {
			shorts++
		}
	}
	freq := stats.UploadFrequency(dates, now)

	tracking, err := s.tracking.LoadTracking(ctx, channelID)
	if err != nil {
		return nil, err
	}
	counts := make([]int64, 0, len(tracking))
	for _, t := range tracking {
		counts = append(counts, t.CommentCount)
	}

	history, err := s.channels.SubscriberHistory(ctx, channelID, now.AddDate(-1, 0, -7))
	if err != nil {
		return nil, err
	}

	return &model.DerivedStats{
		ChannelID:         channelID,
		UploadFrequency:   freq,
		SubscriptionRates: stats.SubscriptionRates(history, currentSubscribers, now),
		CommentStats:      stats.Comments(counts),
		ShortFormCount:    shorts,
		LongFormCount:     len(videos) - shorts,
		Tags:              s.tagger.Tags(videos, freq),
		ComputedAt:        now,
	}, nil
}

// pollProgress re-reads the persisted row count at a fixed interval while
// the sync is in flight. It communicates with the fetch path only through
// shared persisted state.
func (s *SyncService) pollProgress(ctx context.Context, channelID string) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			count, err := s.videos.CountByChannel(ctx, channelID)
			if err != nil {
				if ctx.Err() == nil {
					log.Warn().Err(err).Str("channel_id", channelID).Msg("progress poll failed")
				}
				continue
			}
			s.tracker.SetStored(channelID, count)
		case <-ctx.Done():
			return
		}
	}
}

func (s *SyncService) fail(flightKey string, err error) *model.SyncResponse {
	log.Error().Err(err).Str("channel", flightKey).Msg("sync failed")
	s.tracker.Fail(flightKey, err.Error())
	return &model.SyncResponse{OK: false, Error: err.Error()}
}

// flightKeyFor normalizes unresolvable input so identical references share a
// single-flight slot.
func flightKeyFor(channelKey string) string {
	if id, handle := youtube.ParseChannelInput(channelKey); id != "" {
		return id
	} else if handle != "" {
		return handle
	}
	return channelKey
}
