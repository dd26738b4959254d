package model

import "time"

// Video is one persisted video belonging to a channel. (channel_id, video_id)
// is the natural key; rows are upserted in full on every sync and never
// deleted. Dislikes is nullable because the platform hides it for most videos.
type Video struct {
	VideoID      string    `json:"videoId"`
	ChannelID    string    `json:"channelId"`
	Title        string    `json:"title"`
	DurationText string    `json:"durationText"`
	UploadDate   time.Time `json:"uploadDate"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Dislikes     *int64    `json:"dislikes,omitempty"`
	Topic        string    `json:"topic,omitempty"`
	Presenter    string    `json:"presenter,omitempty"`
	URL          string    `json:"url"`
	IsShort      bool      `json:"isShort"`
	UpdatedAt    time.Time `json:"-"`
}

// VideoPage is one page of the persisted video table read back for display.
type VideoPage struct {
	Videos  []Video `json:"videos"`
	Page    int     `json:"page"`
	HasMore bool    `json:"hasMore"`
}

// CommentTracking is the per-video comment-count snapshot used for delta
// computation. CommentCount is the absolute count at last observation.
type CommentTracking struct {
	ChannelID    string    `json:"channelId"`
	VideoID      string    `json:"videoId"`
	PublishedAt  time.Time `json:"publishedAt"`
	CommentCount int64     `json:"commentCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
