package model

import "time"

// Scan kinds recorded in sync_runs.
const (
	ScanKindFull  = "full"
	ScanKindDelta = "delta"
)

// Sync statuses, in phase order. Progress polling reads these alongside the
// persisted video row count.
const (
	SyncStatusQueued      = "queued"
	SyncStatusResolving   = "resolving"
	SyncStatusFetching    = "fetching"
	SyncStatusReconciling = "reconciling"
	SyncStatusAggregating = "aggregating"
	SyncStatusDone        = "done"
	SyncStatusFailed      = "failed"
)

// SyncRun is an append-only audit record of one sync execution.
type SyncRun struct {
	ID                 int64     `json:"id"`
	ChannelID          string    `json:"channelId"`
	Kind               string    `json:"kind"`
	AddedVideos        int       `json:"addedVideos"`
	TouchedVideos      int       `json:"touchedVideos"`
	CommentsDelta      int64     `json:"commentsDelta"`
	TotalCommentsAfter int64     `json:"totalCommentsAfter"`
	FinishedAt         time.Time `json:"finishedAt"`
}

// SyncRequest is the API request body for triggering a sync.
type SyncRequest struct {
	Channel  string `json:"channel"`
	FullSync bool   `json:"fullSync"`
}

// SyncResponse is the API response for a completed sync.
type SyncResponse struct {
	OK                bool               `json:"ok"`
	ChannelID         string             `json:"channelId,omitempty"`
	InsertedOrUpdated int                `json:"inserted_or_updated"`
	UploadFrequency   *UploadFrequency   `json:"uploadFrequency,omitempty"`
	SubscriptionRates *SubscriptionRates `json:"subscriptionRates,omitempty"`
	CommentStats      *CommentStats      `json:"commentStats,omitempty"`
	Error             string             `json:"error,omitempty"`
}

// SyncProgress is the polling read model for an in-flight sync. Percent is
// capped at 95 until the run signals true completion.
type SyncProgress struct {
	ChannelID      string `json:"channelId"`
	Status         string `json:"status"`
	Percent        int    `json:"percent"`
	StoredVideos   int64  `json:"storedVideos"`
	EstimatedTotal int64  `json:"estimatedTotal"`
	Error          string `json:"error,omitempty"`
}
