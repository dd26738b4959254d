package model

import "time"

// Channel is the canonical identity of a YouTube channel. channel_id is the
// join key for every derived table.
type Channel struct {
	ChannelID             string     `json:"channelId"`
	Title                 string     `json:"title"`
	SubscriberCount       int64      `json:"subscriberCount"`
	TotalViews            int64      `json:"totalViews"`
	TotalVideos           int64      `json:"totalVideos"`
	HiddenSubscriberCount bool       `json:"hiddenSubscriberCount"`
	OfficialArtist        bool       `json:"officialArtist"`
	UploadsPlaylistID     string     `json:"-"`
	LastUploadAt          *time.Time `json:"lastUploadAt,omitempty"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// ChannelAggregate is the channel-level rollup maintained by the scan engine.
// CommentsTotal is updated incrementally by delta scans and only recomputed
// from scratch by a full scan.
type ChannelAggregate struct {
	ChannelID            string     `json:"channelId"`
	CommentsTotal        int64      `json:"commentsTotal"`
	LastFullScanAt       *time.Time `json:"lastFullScanAt,omitempty"`
	LastDeltaScanAt      *time.Time `json:"lastDeltaScanAt,omitempty"`
	LastVideoPublishedAt *time.Time `json:"lastVideoPublishedAt,omitempty"`
}

// ChannelResponse is the API response for channel lookups.
type ChannelResponse struct {
	ChannelID       string            `json:"channelId"`
	Title           string            `json:"title"`
	SubscriberCount int64             `json:"subscriberCount"`
	TotalViews      int64             `json:"totalViews"`
	TotalVideos     int64             `json:"totalVideos"`
	CommentsTotal   int64             `json:"commentsTotal"`
	LastUploadAt    string            `json:"lastUploadAt,omitempty"`
	Aggregate       *ChannelAggregate `json:"aggregate,omitempty"`
}

// ResolveRequest is the API request body for channel resolution.
type ResolveRequest struct {
	Channel string `json:"channel"`
}

// ResolveResponse is the API response for channel resolution.
type ResolveResponse struct {
	OK          bool   `json:"ok"`
	ChannelID   string `json:"channelId,omitempty"`
	TotalVideos int64  `json:"totalVideos,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SubscriberPoint is one historical subscriber-count snapshot, written on
// every sync and read by the subscription-rate calculator.
type SubscriberPoint struct {
	ChannelID       string    `json:"channelId"`
	SubscriberCount int64     `json:"subscriberCount"`
	RecordedAt      time.Time `json:"recordedAt"`
}
