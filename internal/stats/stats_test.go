package stats

import (
	"math"
	"testing"
	"time"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
)

var now = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func TestUploadFrequency_DegenerateCases(t *testing.T) {
	zero := model.UploadFrequency{}

	if got := UploadFrequency(nil, now); got != zero {
		t.Errorf("no videos: got %+v, want all zero", got)
	}
	if got := UploadFrequency([]time.Time{now.AddDate(0, -1, 0)}, now); got != zero {
		t.Errorf("one video: got %+v, want all zero", got)
	}
	// Zero timestamps are dropped, leaving one usable date
	dates := []time.Time{{}, now.AddDate(0, -1, 0)}
	if got := UploadFrequency(dates, now); got != zero {
		t.Errorf("one usable date: got %+v, want all zero", got)
	}
}

func TestUploadFrequency_Averages(t *testing.T) {
	// 10 uploads, earliest 100 days ago: 0.1/day
	dates := make([]time.Time, 10)
	for i := range dates {
		dates[i] = now.AddDate(0, 0, -10*(i+1))
	}

	freq := UploadFrequency(dates, now)
	if math.Abs(freq.PerWeek-0.7) > 1e-9 {
		t.Errorf("PerWeek = %f, want 0.7", freq.PerWeek)
	}
	if math.Abs(freq.PerMonth-3.0) > 1e-9 {
		t.Errorf("PerMonth = %f, want 3.0", freq.PerMonth)
	}
	if math.Abs(freq.PerQuarter-9.0) > 1e-9 {
		t.Errorf("PerQuarter = %f, want 9.0", freq.PerQuarter)
	}
	if math.Abs(freq.PerYear-36.5) > 1e-9 {
		t.Errorf("PerYear = %f, want 36.5", freq.PerYear)
	}
}

func TestUploadFrequency_SubDaySpanClamped(t *testing.T) {
	dates := []time.Time{now.Add(-2 * time.Hour), now.Add(-1 * time.Hour)}
	freq := UploadFrequency(dates, now)
	// Span clamps to one day: 2 videos/day
	if math.Abs(freq.PerWeek-14) > 1e-9 {
		t.Errorf("PerWeek = %f, want 14", freq.PerWeek)
	}
}

func TestComments_ZeroExclusion(t *testing.T) {
	cs := Comments([]int64{0, 5, 0, 10, 15})

	if cs.Total != 30 {
		t.Errorf("Total = %d, want 30", cs.Total)
	}
	if cs.MaxPerVideo != 15 {
		t.Errorf("Max = %d, want 15", cs.MaxPerVideo)
	}
	if cs.MinPerVideo != 5 {
		t.Errorf("Min = %d, want 5 (zeros excluded)", cs.MinPerVideo)
	}
	if cs.AvgPerVideo != 10 {
		t.Errorf("Avg = %f, want 10 (zeros excluded)", cs.AvgPerVideo)
	}
}

func TestComments_AllZeros(t *testing.T) {
	cs := Comments([]int64{0, 0, 0})
	if cs.Total != 0 || cs.MaxPerVideo != 0 || cs.MinPerVideo != 0 || cs.AvgPerVideo != 0 {
		t.Errorf("all zeros: got %+v, want all zero", cs)
	}
}

func TestComments_Empty(t *testing.T) {
	cs := Comments(nil)
	if cs != (model.CommentStats{}) {
		t.Errorf("empty input: got %+v, want zero value", cs)
	}
}

func TestComments_ZeroIsValidMax(t *testing.T) {
	cs := Comments([]int64{0})
	if cs.MaxPerVideo != 0 {
		t.Errorf("Max = %d, want 0 (a zero-comment video is a valid max candidate)", cs.MaxPerVideo)
	}
}

func TestSubscriptionRates_Windows(t *testing.T) {
	history := []model.SubscriberPoint{
		{SubscriberCount: 1000, RecordedAt: now.AddDate(-1, 0, -5)},
		{SubscriberCount: 5000, RecordedAt: now.AddDate(0, -2, 0)},
		{SubscriberCount: 9000, RecordedAt: now.AddDate(0, 0, -10)},
		{SubscriberCount: 9800, RecordedAt: now.AddDate(0, 0, -2)},
	}

	rates := SubscriptionRates(history, 10000, now)
	if rates.PerDay != 200 {
		t.Errorf("PerDay = %d, want 200 (baseline is the 2-day-old snapshot)", rates.PerDay)
	}
	if rates.PerWeek != 1000 {
		t.Errorf("PerWeek = %d, want 1000 (baseline is the 10-day-old snapshot)", rates.PerWeek)
	}
	if rates.PerMonth != 5000 {
		t.Errorf("PerMonth = %d, want 5000 (baseline is the 2-month-old snapshot)", rates.PerMonth)
	}
	if rates.PerYear != 9000 {
		t.Errorf("PerYear = %d, want 9000", rates.PerYear)
	}
}

func TestSubscriptionRates_NoBaselineOldEnough(t *testing.T) {
	history := []model.SubscriberPoint{
		{SubscriberCount: 9990, RecordedAt: now.Add(-2 * time.Hour)},
	}
	rates := SubscriptionRates(history, 10000, now)
	if rates.PerDay != 0 {
		t.Errorf("PerDay = %d, want 0 (only snapshot is too recent)", rates.PerDay)
	}
}

func TestSubscriptionRates_NoHistory(t *testing.T) {
	rates := SubscriptionRates(nil, 500, now)
	if rates != (model.SubscriptionRates{}) {
		t.Errorf("no history: got %+v, want all zero", rates)
	}
}

func TestKeywordTagger_Deterministic(t *testing.T) {
	videos := []model.Video{
		{Title: "GPU Review: is it worth it?", Views: 1000, Likes: 60},
		{Title: "Laptop unboxing and first impressions", Views: 2000, Likes: 100},
		{Title: "Smartphone benchmark results", Views: 500, Likes: 30},
		{Title: "My morning routine", Views: 100, Likes: 2},
	}
	freq := model.UploadFrequency{PerWeek: 2}

	tagger := NewKeywordTagger()
	first := tagger.Tags(videos, freq)
	second := tagger.Tags(videos, freq)

	if len(first) != len(second) {
		t.Fatalf("non-deterministic tag count: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic tags: %v vs %v", first, second)
		}
	}

	want := map[string]bool{}
	for _, tag := range first {
		want[tag] = true
	}
	if !want["tech"] {
		t.Errorf("tags = %v, expected tech (3 keyword matches)", first)
	}
	if !want["weekly-uploader"] {
		t.Errorf("tags = %v, expected weekly-uploader", first)
	}
	if !want["high-engagement"] {
		t.Errorf("tags = %v, expected high-engagement (192/3600 likes/views)", first)
	}
}
