package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
	"github.com/hiel0122/youtuber-analyzer-go/internal/youtube"
)

type fakeLister struct {
	entries    []youtube.PlaylistEntry
	stats      map[string]youtube.VideoStats
	statsCalls [][]string
	listErr    error
	statsErr   error
}

func (f *fakeLister) PlaylistVideoIDs(ctx context.Context, playlistID string) ([]youtube.PlaylistEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func (f *fakeLister) VideoStatistics(ctx context.Context, videoIDs []string) ([]youtube.VideoStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	f.statsCalls = append(f.statsCalls, videoIDs)
	out := make([]youtube.VideoStats, 0, len(videoIDs))
	for _, id := range videoIDs {
		if vs, ok := f.stats[id]; ok {
			out = append(out, vs)
		}
	}
	return out, nil
}

type fakeStore struct {
	tracking map[string]model.CommentTracking
	agg      model.ChannelAggregate

	appliedRows []model.CommentTracking
	appliedAgg  *model.ChannelAggregate
	appliedFull bool
	applyCount  int
	touchedAt   *time.Time
	applyErr    error
}

func (f *fakeStore) LoadTracking(ctx context.Context, channelID string) (map[string]model.CommentTracking, error) {
	out := make(map[string]model.CommentTracking, len(f.tracking))
	for k, v := range f.tracking {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) Aggregate(ctx context.Context, channelID string) (*model.ChannelAggregate, error) {
	agg := f.agg
	agg.ChannelID = channelID
	return &agg, nil
}

func (f *fakeStore) HasTracking(ctx context.Context, channelID string) (bool, error) {
	return len(f.tracking) > 0, nil
}

func (f *fakeStore) ApplyScan(ctx context.Context, rows []model.CommentTracking, agg *model.ChannelAggregate, fullScan bool) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applyCount++
	f.appliedRows = rows
	f.appliedAgg = agg
	f.appliedFull = fullScan

	// Mirror the atomic commit: rows and aggregate move together.
	if f.tracking == nil {
		f.tracking = make(map[string]model.CommentTracking)
	}
	for _, row := range rows {
		f.tracking[row.VideoID] = row
	}
	f.agg = *agg
	return nil
}

func (f *fakeStore) TouchDeltaScan(ctx context.Context, channelID string, at time.Time) error {
	f.touchedAt = &at
	return nil
}

func entry(id string, published time.Time) youtube.PlaylistEntry {
	return youtube.PlaylistEntry{VideoID: id, PublishedAt: published}
}

func stat(id string, comments int64) youtube.VideoStats {
	return youtube.VideoStats{VideoID: id, CommentCount: comments, PublishedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func TestFullScan_SumsAndRecords(t *testing.T) {
	lister := &fakeLister{
		entries: []youtube.PlaylistEntry{
			entry("v1", time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)),
			entry("v2", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)),
			entry("v3", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		},
		stats: map[string]youtube.VideoStats{
			"v1": stat("v1", 10),
			"v2": stat("v2", 20),
			"v3": stat("v3", 5),
		},
	}
	store := &fakeStore{}
	engine := NewEngine(lister, store, 5)

	res, err := engine.FullScan(context.Background(), "UC1", "UU1")
	require.NoError(t, err)

	assert.Equal(t, model.ScanKindFull, res.Kind)
	assert.Equal(t, int64(35), res.TotalAfter)
	assert.Equal(t, 3, res.AddedVideos)
	assert.Equal(t, 3, res.TouchedVideos)
	assert.True(t, store.appliedFull)
	require.NotNil(t, store.appliedAgg.LastFullScanAt)
	require.NotNil(t, store.appliedAgg.LastDeltaScanAt)
	assert.Equal(t, int64(35), store.appliedAgg.CommentsTotal)
}

func TestFullScan_Idempotent(t *testing.T) {
	lister := &fakeLister{
		entries: []youtube.PlaylistEntry{entry("v1", time.Time{}), entry("v2", time.Time{})},
		stats: map[string]youtube.VideoStats{
			"v1": stat("v1", 7),
			"v2": stat("v2", 3),
		},
	}
	store := &fakeStore{}
	engine := NewEngine(lister, store, 5)

	first, err := engine.FullScan(context.Background(), "UC1", "UU1")
	require.NoError(t, err)
	second, err := engine.FullScan(context.Background(), "UC1", "UU1")
	require.NoError(t, err)

	// Unchanged remote dataset: identical total, no duplicate rows.
	assert.Equal(t, first.TotalAfter, second.TotalAfter)
	assert.Equal(t, int64(10), store.agg.CommentsTotal)
	assert.Len(t, store.tracking, 2)
	assert.Equal(t, 0, second.AddedVideos)
}

func TestDeltaScan_DeltaCorrectness(t *testing.T) {
	// Known counts [10, 20, 5]; re-fetch produces [12, 20, 3].
	// commentsDelta = (12-10)+(20-20)+(3-5) = 1, including the negative term.
	published := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		tracking: map[string]model.CommentTracking{
			"v1": {ChannelID: "UC1", VideoID: "v1", CommentCount: 10},
			"v2": {ChannelID: "UC1", VideoID: "v2", CommentCount: 20},
			"v3": {ChannelID: "UC1", VideoID: "v3", CommentCount: 5},
		},
		agg: model.ChannelAggregate{CommentsTotal: 35},
	}
	lister := &fakeLister{
		entries: []youtube.PlaylistEntry{
			entry("v1", published), entry("v2", published), entry("v3", published),
		},
		stats: map[string]youtube.VideoStats{
			"v1": stat("v1", 12),
			"v2": stat("v2", 20),
			"v3": stat("v3", 3),
		},
	}
	engine := NewEngine(lister, store, 200)

	res, err := engine.DeltaScan(context.Background(), "UC1", "UU1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.CommentsDelta)
	assert.Equal(t, int64(36), res.TotalAfter)
	assert.False(t, store.appliedFull)
	assert.Nil(t, store.appliedAgg.LastFullScanAt, "delta scan must not set last_full_scan_at")
}

func TestDeltaScan_BackfillWindowUnion(t *testing.T) {
	// 26 known videos A..Z; window 5; brand-new AA ranked 30th in the feed.
	// Target must be the 5 most recent feed entries plus AA: 6 videos.
	store := &fakeStore{tracking: map[string]model.CommentTracking{}}
	var entries []youtube.PlaylistEntry
	stats := map[string]youtube.VideoStats{}
	for i := 0; i < 26; i++ {
		id := string(rune('A' + i))
		store.tracking[id] = model.CommentTracking{ChannelID: "UC1", VideoID: id, CommentCount: 1}
		entries = append(entries, entry(id, time.Time{}))
		stats[id] = stat(id, 1)
	}
	// Pad the feed so AA sits outside the recent window, then append it.
	for i := 0; i < 3; i++ {
		id := "pad" + string(rune('0'+i))
		store.tracking[id] = model.CommentTracking{ChannelID: "UC1", VideoID: id, CommentCount: 1}
		entries = append(entries, entry(id, time.Time{}))
		stats[id] = stat(id, 1)
	}
	entries = append(entries, entry("AA", time.Time{}))
	stats["AA"] = stat("AA", 4)

	lister := &fakeLister{entries: entries, stats: stats}
	engine := NewEngine(lister, store, 5)

	res, err := engine.DeltaScan(context.Background(), "UC1", "UU1")
	require.NoError(t, err)

	require.Len(t, lister.statsCalls, 1)
	target := lister.statsCalls[0]
	assert.Len(t, target, 6)
	assert.Contains(t, target, "AA")
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		assert.Contains(t, target, id, "window must cover the most recent known videos")
	}
	assert.Equal(t, 1, res.AddedVideos)
	assert.Equal(t, int64(4), res.CommentsDelta)
}

func TestDeltaScan_EmptyFeedFastPath(t *testing.T) {
	store := &fakeStore{
		tracking: map[string]model.CommentTracking{
			"v1": {ChannelID: "UC1", VideoID: "v1", CommentCount: 9},
		},
		agg: model.ChannelAggregate{CommentsTotal: 9},
	}
	lister := &fakeLister{}
	engine := NewEngine(lister, store, 5)

	res, err := engine.DeltaScan(context.Background(), "UC1", "UU1")
	require.NoError(t, err)

	assert.Equal(t, int64(0), res.CommentsDelta)
	assert.Equal(t, int64(9), res.TotalAfter)
	require.NotNil(t, store.touchedAt, "fast path must still move last_delta_scan_at")
	assert.Equal(t, 0, store.applyCount, "fast path must not rewrite rows")
	assert.Empty(t, lister.statsCalls, "fast path must not hit the statistics API")
}

func TestScan_PicksFullThenDelta(t *testing.T) {
	lister := &fakeLister{
		entries: []youtube.PlaylistEntry{entry("v1", time.Time{})},
		stats:   map[string]youtube.VideoStats{"v1": stat("v1", 2)},
	}
	store := &fakeStore{}
	engine := NewEngine(lister, store, 5)

	res, err := engine.Scan(context.Background(), "UC1", "UU1", false)
	require.NoError(t, err)
	assert.Equal(t, model.ScanKindFull, res.Kind, "first sync must run a full scan")

	res, err = engine.Scan(context.Background(), "UC1", "UU1", false)
	require.NoError(t, err)
	assert.Equal(t, model.ScanKindDelta, res.Kind)

	res, err = engine.Scan(context.Background(), "UC1", "UU1", true)
	require.NoError(t, err)
	assert.Equal(t, model.ScanKindFull, res.Kind, "forceFull must override")
}

func TestDeltaScan_FetchFailureAborts(t *testing.T) {
	boom := errors.New("quota exceeded")
	store := &fakeStore{
		tracking: map[string]model.CommentTracking{
			"v1": {ChannelID: "UC1", VideoID: "v1", CommentCount: 1},
		},
	}
	lister := &fakeLister{
		entries:  []youtube.PlaylistEntry{entry("v1", time.Time{})},
		statsErr: boom,
	}
	engine := NewEngine(lister, store, 5)

	_, err := engine.DeltaScan(context.Background(), "UC1", "UU1")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.applyCount, "no partial writes on fetch failure")
}
