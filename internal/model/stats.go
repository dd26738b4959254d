package model

import "time"

// UploadFrequency holds average upload rates over the span between the
// earliest observed upload and now.
type UploadFrequency struct {
	PerWeek    float64 `json:"perWeek"`
	PerMonth   float64 `json:"perMonth"`
	PerQuarter float64 `json:"perQuarter"`
	PerYear    float64 `json:"perYear"`
}

// SubscriptionRates holds best-effort subscriber deltas over standard windows,
// derived from subscriber_history snapshots.
type SubscriptionRates struct {
	PerDay   int64 `json:"perDay"`
	PerWeek  int64 `json:"perWeek"`
	PerMonth int64 `json:"perMonth"`
	PerYear  int64 `json:"perYear"`
}

// CommentStats aggregates per-video comment counts. Min and Avg exclude
// zero-valued entries because zero also means "comments disabled"; Max and
// Total include them.
type CommentStats struct {
	Total       int64   `json:"total"`
	MaxPerVideo int64   `json:"maxPerVideo"`
	MinPerVideo int64   `json:"minPerVideo"`
	AvgPerVideo float64 `json:"avgPerVideo"`
}

// DerivedStats is the full per-request statistics payload.
type DerivedStats struct {
	ChannelID         string            `json:"channelId"`
	UploadFrequency   UploadFrequency   `json:"uploadFrequency"`
	SubscriptionRates SubscriptionRates `json:"subscriptionRates"`
	CommentStats      CommentStats      `json:"commentStats"`
	ShortFormCount    int               `json:"shortFormCount"`
	LongFormCount     int               `json:"longFormCount"`
	Tags              []string          `json:"tags"`
	ComputedAt        time.Time         `json:"computedAt"`
}

// Snapshot is a cached point-in-time copy of a channel's stats and derived
// statistics, used to replay a past analysis without re-syncing.
type Snapshot struct {
	ChannelID string       `json:"channelId"`
	Channel   Channel      `json:"channel"`
	Stats     DerivedStats `json:"stats"`
	TakenAt   time.Time    `json:"takenAt"`
}
