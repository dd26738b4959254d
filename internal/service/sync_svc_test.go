package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
	"github.com/hiel0122/youtuber-analyzer-go/internal/scan"
	"github.com/hiel0122/youtuber-analyzer-go/internal/stats"
	"github.com/hiel0122/youtuber-analyzer-go/internal/youtube"
)

type fakeResolver struct {
	info      *youtube.ChannelInfo
	err       error
	failFirst bool
	calls     int
}

func (f *fakeResolver) ResolveChannel(ctx context.Context, input string) (*youtube.ChannelInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.failFirst && f.calls == 1 {
		return nil, errors.New("transient resolve failure")
	}
	return f.info, nil
}

type fakeFetcher struct {
	entries []youtube.PlaylistEntry
	stats   []youtube.VideoStats
}

func (f *fakeFetcher) PlaylistVideoIDs(ctx context.Context, playlistID string) ([]youtube.PlaylistEntry, error) {
	return f.entries, nil
}

func (f *fakeFetcher) VideoStatistics(ctx context.Context, videoIDs []string) ([]youtube.VideoStats, error) {
	return f.stats, nil
}

type fakeScanner struct {
	result *scan.Result
	err    error
	calls  int
}

func (f *fakeScanner) Scan(ctx context.Context, channelID, playlistID string, forceFull bool) (*scan.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeChannelStore struct {
	upserts  []model.Channel
	subsAt   []time.Time
	history  []model.SubscriberPoint
	playlist string
}

func (f *fakeChannelStore) Upsert(ctx context.Context, ch *model.Channel) error {
	f.upserts = append(f.upserts, *ch)
	return nil
}

func (f *fakeChannelStore) FindByChannelID(ctx context.Context, channelID string) (*model.Channel, error) {
	if len(f.upserts) == 0 {
		return nil, pgx.ErrNoRows
	}
	ch := f.upserts[len(f.upserts)-1]
	return &ch, nil
}

func (f *fakeChannelStore) UploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	return f.playlist, nil
}

func (f *fakeChannelStore) RecordSubscribers(ctx context.Context, channelID string, count int64, at time.Time) error {
	f.subsAt = append(f.subsAt, at)
	return nil
}

func (f *fakeChannelStore) SubscriberHistory(ctx context.Context, channelID string, since time.Time) ([]model.SubscriberPoint, error) {
	return f.history, nil
}

type fakeVideoStore struct {
	rows []model.Video
}

func (f *fakeVideoStore) UpsertBatch(ctx context.Context, videos []model.Video) (int, error) {
	f.rows = videos
	return len(videos), nil
}

func (f *fakeVideoStore) CountByChannel(ctx context.Context, channelID string) (int64, error) {
	return int64(len(f.rows)), nil
}

func (f *fakeVideoStore) ListAllByChannel(ctx context.Context, channelID string) ([]model.Video, error) {
	return f.rows, nil
}

type fakeTrackingReader struct {
	tracking map[string]model.CommentTracking
}

func (f *fakeTrackingReader) LoadTracking(ctx context.Context, channelID string) (map[string]model.CommentTracking, error) {
	return f.tracking, nil
}

type fakeRunLog struct {
	runs []model.SyncRun
}

func (f *fakeRunLog) Record(ctx context.Context, run *model.SyncRun) error {
	f.runs = append(f.runs, *run)
	return nil
}

type fakeSnapshotSink struct {
	saved       []model.Snapshot
	invalidated []string
}

func (f *fakeSnapshotSink) Save(ctx context.Context, snap *model.Snapshot) error {
	f.saved = append(f.saved, *snap)
	return nil
}

func (f *fakeSnapshotSink) InvalidateChannel(ctx context.Context, channelID string) error {
	f.invalidated = append(f.invalidated, channelID)
	return nil
}

func newTestSyncService(resolver Resolver, fetcher Fetcher, scanner Scanner,
	channels ChannelStore, videos VideoStore) (*SyncService, *ProgressTracker, *fakeRunLog, *fakeSnapshotSink) {
	tracker := NewProgressTracker()
	runs := &fakeRunLog{}
	snaps := &fakeSnapshotSink{}
	svc := NewSyncService(
		resolver, fetcher, scanner, channels, videos,
		&fakeTrackingReader{tracking: map[string]model.CommentTracking{
			"v1": {VideoID: "v1", CommentCount: 10},
			"v2": {VideoID: "v2", CommentCount: 0},
		}},
		runs, snaps,
		stats.NewKeywordTagger(),
		tracker,
		time.Hour,
	)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, tracker, runs, snaps
}

func TestSync_EndToEnd(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	info := &youtube.ChannelInfo{
		ChannelID:         "UCabcdefghijklmnopqrstuv",
		Title:             "Test Channel",
		SubscriberCount:   10000,
		VideoCount:        2,
		UploadsPlaylistID: "UUabcdefghijklmnopqrstuv",
	}
	fetcher := &fakeFetcher{
		entries: []youtube.PlaylistEntry{{VideoID: "v1"}, {VideoID: "v2"}},
		stats: []youtube.VideoStats{
			{VideoID: "v1", Title: "long one", Duration: "PT12M4S", PublishedAt: now.AddDate(0, 0, -3), ViewCount: 100, LikeCount: 10},
			{VideoID: "v2", Title: "short one", Duration: "PT45S", PublishedAt: now.AddDate(0, 0, -1), ViewCount: 50, LikeCount: 5},
		},
	}
	scanner := &fakeScanner{result: &scan.Result{Kind: model.ScanKindFull, TouchedVideos: 2, CommentsDelta: 10, TotalAfter: 10}}
	channels := &fakeChannelStore{}
	videos := &fakeVideoStore{}

	svc, tracker, runs, snaps := newTestSyncService(&fakeResolver{info: info}, fetcher, scanner, channels, videos)

	resp := svc.Sync(context.Background(), "@testchannel", false)
	require.True(t, resp.OK, "sync should succeed: %s", resp.Error)

	assert.Equal(t, info.ChannelID, resp.ChannelID)
	assert.Equal(t, 2, resp.InsertedOrUpdated)
	require.NotNil(t, resp.CommentStats)
	assert.Equal(t, int64(10), resp.CommentStats.Total)

	// Short-form classification flows into the persisted rows.
	require.Len(t, videos.rows, 2)
	assert.False(t, videos.rows[0].IsShort)
	assert.True(t, videos.rows[1].IsShort)
	assert.Equal(t, "https://www.youtube.com/watch?v=v1", videos.rows[0].URL)

	// Channel identity is persisted and refreshed with the newest upload.
	require.NotEmpty(t, channels.upserts)
	last := channels.upserts[len(channels.upserts)-1]
	require.NotNil(t, last.LastUploadAt)
	assert.Equal(t, now.AddDate(0, 0, -1), *last.LastUploadAt)
	assert.Len(t, channels.subsAt, 1)

	// Audit, snapshot and terminal progress.
	require.Len(t, runs.runs, 1)
	assert.Equal(t, model.ScanKindFull, runs.runs[0].Kind)
	require.Len(t, snaps.saved, 1)
	assert.Equal(t, 1, snaps.saved[0].Stats.ShortFormCount)
	assert.Equal(t, []string{info.ChannelID}, snaps.invalidated)

	p, ok := tracker.Get(info.ChannelID)
	require.True(t, ok)
	assert.Equal(t, model.SyncStatusDone, p.Status)
	assert.Equal(t, 100, p.Percent)

	// On-demand recomputation matches the snapshot taken at sync time.
	recomputed, err := svc.Stats(context.Background(), info.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), recomputed.CommentStats.Total)
	assert.Equal(t, 1, recomputed.ShortFormCount)
	assert.Equal(t, 1, recomputed.LongFormCount)
}

func TestSync_ResolutionFailureUsesDefaultEstimate(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("api unreachable")}
	svc, tracker, _, _ := newTestSyncService(resolver, &fakeFetcher{}, &fakeScanner{},
		&fakeChannelStore{}, &fakeVideoStore{})

	resp := svc.Sync(context.Background(), "@unknown", false)

	// The start is never blocked by a failed estimate; the run itself fails
	// later and reports through the response, not a panic or a nil deref.
	require.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)

	p, ok := tracker.Get("@unknown")
	require.True(t, ok)
	assert.Equal(t, int64(DefaultTotalEstimate), p.EstimatedTotal)
	assert.Equal(t, model.SyncStatusFailed, p.Status)
	assert.Equal(t, 0, p.Percent)
}

func TestSync_LateResolutionRekeysProgress(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	info := &youtube.ChannelInfo{
		ChannelID:         "UCabcdefghijklmnopqrstuv",
		Title:             "Test Channel",
		VideoCount:        1,
		UploadsPlaylistID: "UUabcdefghijklmnopqrstuv",
	}
	fetcher := &fakeFetcher{
		entries: []youtube.PlaylistEntry{{VideoID: "v1"}},
		stats:   []youtube.VideoStats{{VideoID: "v1", Duration: "PT10M", PublishedAt: now.AddDate(0, 0, -2)}},
	}
	resolver := &fakeResolver{info: info, failFirst: true}

	svc, tracker, _, _ := newTestSyncService(resolver, fetcher, &fakeScanner{result: &scan.Result{}},
		&fakeChannelStore{}, &fakeVideoStore{})

	// The estimate call fails, the in-run retry succeeds. The run started
	// under the handle but clients poll by canonical channel ID.
	resp := svc.Sync(context.Background(), "@testchannel", false)
	require.True(t, resp.OK, "sync should succeed on the retried resolution: %s", resp.Error)
	assert.Equal(t, 2, resolver.calls)

	p, ok := tracker.Get(info.ChannelID)
	require.True(t, ok, "progress must be reachable by channel ID after resolution")
	assert.Equal(t, info.ChannelID, p.ChannelID)
	assert.Equal(t, model.SyncStatusDone, p.Status)
	assert.Equal(t, int64(DefaultTotalEstimate), p.EstimatedTotal)

	_, stale := tracker.Get("@testchannel")
	assert.False(t, stale, "the handle-keyed entry must not linger")
}

func TestSync_ScanFailureIsNonFatal(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	info := &youtube.ChannelInfo{
		ChannelID:         "UCabcdefghijklmnopqrstuv",
		Title:             "Test Channel",
		VideoCount:        1,
		UploadsPlaylistID: "UUabcdefghijklmnopqrstuv",
	}
	fetcher := &fakeFetcher{
		entries: []youtube.PlaylistEntry{{VideoID: "v1"}},
		stats:   []youtube.VideoStats{{VideoID: "v1", Duration: "PT10M", PublishedAt: now.AddDate(0, 0, -2)}},
	}
	scanner := &fakeScanner{err: errors.New("quota exceeded")}

	svc, tracker, runs, snaps := newTestSyncService(&fakeResolver{info: info}, fetcher, scanner,
		&fakeChannelStore{}, &fakeVideoStore{})

	resp := svc.Sync(context.Background(), info.ChannelID, false)
	require.True(t, resp.OK, "video sync must survive a comment scan failure")
	assert.Equal(t, 1, scanner.calls)
	assert.Empty(t, runs.runs, "failed scans are not recorded as runs")
	require.Len(t, snaps.saved, 1)

	p, _ := tracker.Get(info.ChannelID)
	assert.Equal(t, model.SyncStatusDone, p.Status)
}
