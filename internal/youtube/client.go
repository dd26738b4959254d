// Package youtube wraps the YouTube Data API v3 for channel resolution and
// paginated upload/statistics fetching.
package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/hiel0122/youtuber-analyzer-go/internal/retry"
)

// The API caps both playlist pages and batch statistics lookups at 50 items.
const (
	pageSize  = 50
	batchSize = 50
)

// defaultBatchDelay is a conservative politeness gap between statistics
// batches, on top of the backoff-on-429 retry policy.
const defaultBatchDelay = 60 * time.Millisecond

var apiCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ytanalyzer_youtube_api_calls_total",
		Help: "YouTube Data API calls, by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

func init() {
	prometheus.MustRegister(apiCalls)
}

// ChannelInfo is the result of resolving a channel reference.
type ChannelInfo struct {
	ChannelID             string
	Title                 string
	SubscriberCount       int64
	ViewCount             int64
	VideoCount            int64
	HiddenSubscriberCount bool
	OfficialArtist        bool
	UploadsPlaylistID     string
}

// PlaylistEntry is one video reference from a channel's uploads feed, in feed
// order (newest first).
type PlaylistEntry struct {
	VideoID     string
	Title       string
	PublishedAt time.Time
}

// VideoStats is one video's statistics from a batch lookup.
type VideoStats struct {
	VideoID      string
	Title        string
	Duration     string
	PublishedAt  time.Time
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
}

// Client wraps the YouTube Data API service. The API key is explicit
// configuration; nothing is read from ambient state.
type Client struct {
	service    *ytapi.Service
	batchDelay time.Duration
	retryCfg   retry.Config
}

// NewClient creates a connected client using the given API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is required")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	service, err := ytapi.NewService(ctx, option.WithAPIKey(apiKey), option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{
		service:    service,
		batchDelay: defaultBatchDelay,
		retryCfg:   retry.DefaultConfig(),
	}, nil
}

// ParseChannelInput normalizes free-form user input into either a verbatim
// channel ID (from a /channel/<ID> path) or an @handle. Exactly one of the
// return values is non-empty.
func ParseChannelInput(input string) (channelID, handle string) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ""
	}

	if strings.Contains(s, "youtube.com/") || strings.Contains(s, "youtu.be/") {
		if u, err := url.Parse(normalizeScheme(s)); err == nil {
			path := strings.Trim(u.Path, "/")
			switch {
			case strings.HasPrefix(path, "channel/"):
				return strings.SplitN(strings.TrimPrefix(path, "channel/"), "/", 2)[0], ""
			case strings.HasPrefix(path, "@"):
				return "", strings.SplitN(path, "/", 2)[0]
			case strings.HasPrefix(path, "c/"):
				return "", "@" + strings.SplitN(strings.TrimPrefix(path, "c/"), "/", 2)[0]
			case strings.HasPrefix(path, "user/"):
				return "", "@" + strings.SplitN(strings.TrimPrefix(path, "user/"), "/", 2)[0]
			}
		}
	}

	if strings.HasPrefix(s, "UC") && len(s) == 24 {
		return s, ""
	}
	if strings.HasPrefix(s, "@") {
		return "", s
	}
	return "", "@" + s
}

func normalizeScheme(s string) string {
	if strings.Contains(s, "://") {
		return s
	}
	return "https://" + s
}

// ResolveChannel maps arbitrary user input to a canonical channel identity
// with statistics and the cached uploads playlist reference.
func (c *Client) ResolveChannel(ctx context.Context, input string) (*ChannelInfo, error) {
	channelID, handle := ParseChannelInput(input)
	if channelID == "" && handle == "" {
		return nil, fmt.Errorf("%w: empty channel reference", ErrChannelNotFound)
	}

	parts := []string{"snippet", "statistics", "contentDetails"}
	var resp *ytapi.ChannelListResponse
	err := retry.Do(ctx, c.retryCfg, IsRetryable, func(ctx context.Context) error {
		call := c.service.Channels.List(parts)
		if channelID != "" {
			call = call.Id(channelID)
		} else {
			call = call.ForHandle(handle)
		}
		var callErr error
		resp, callErr = call.MaxResults(1).Context(ctx).Do()
		observe("channels.list", callErr)
		return Classify(callErr)
	})
	if err != nil {
		return nil, fmt.Errorf("resolve channel %q: %w", input, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("resolve channel %q: %w", input, ErrChannelNotFound)
	}

	item := resp.Items[0]
	info := &ChannelInfo{
		ChannelID: item.Id,
		Title:     item.Snippet.Title,
		// The Data API does not expose the official-artist badge; auto-generated
		// artist channels carry a "- Topic" title suffix.
		OfficialArtist: strings.HasSuffix(item.Snippet.Title, " - Topic"),
	}
	if item.Statistics != nil {
		info.SubscriberCount = int64(item.Statistics.SubscriberCount)
		info.ViewCount = int64(item.Statistics.ViewCount)
		info.VideoCount = int64(item.Statistics.VideoCount)
		info.HiddenSubscriberCount = item.Statistics.HiddenSubscriberCount
	}
	if item.ContentDetails != nil && item.ContentDetails.RelatedPlaylists != nil {
		info.UploadsPlaylistID = item.ContentDetails.RelatedPlaylists.Uploads
	}
	return info, nil
}

// PlaylistVideoIDs follows continuation tokens until the uploads feed is
// exhausted and returns every entry in feed order.
func (c *Client) PlaylistVideoIDs(ctx context.Context, playlistID string) ([]PlaylistEntry, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("uploads playlist id is required")
	}

	var entries []PlaylistEntry
	pageToken := ""
	pages := 0

	for {
		var resp *ytapi.PlaylistItemListResponse
		err := retry.Do(ctx, c.retryCfg, IsRetryable, func(ctx context.Context) error {
			call := c.service.PlaylistItems.List([]string{"snippet"}).
				PlaylistId(playlistID).
				MaxResults(pageSize)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var callErr error
			resp, callErr = call.Context(ctx).Do()
			observe("playlistItems.list", callErr)
			return Classify(callErr)
		})
		if err != nil {
			return nil, fmt.Errorf("list playlist %s page %d: %w", playlistID, pages+1, err)
		}
		pages++

		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.ResourceId == nil {
				continue
			}
			publishedAt, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			entries = append(entries, PlaylistEntry{
				VideoID:     item.Snippet.ResourceId.VideoId,
				Title:       item.Snippet.Title,
				PublishedAt: publishedAt,
			})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	log.Debug().Str("playlist_id", playlistID).Int("pages", pages).
		Int("videos", len(entries)).Msg("uploads feed listed")
	return entries, nil
}

// VideoStatistics fetches statistics for the given IDs in batches of 50,
// pausing batchDelay between batches.
func (c *Client) VideoStatistics(ctx context.Context, videoIDs []string) ([]VideoStats, error) {
	stats := make([]VideoStats, 0, len(videoIDs))

	for start := 0; start < len(videoIDs); start += batchSize {
		end := min(start+batchSize, len(videoIDs))
		batch := videoIDs[start:end]

		var resp *ytapi.VideoListResponse
		err := retry.Do(ctx, c.retryCfg, IsRetryable, func(ctx context.Context) error {
			var callErr error
			resp, callErr = c.service.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
				Id(batch...).
				Context(ctx).
				Do()
			observe("videos.list", callErr)
			return Classify(callErr)
		})
		if err != nil {
			return nil, fmt.Errorf("fetch statistics batch %d-%d: %w", start, end, err)
		}

		for _, item := range resp.Items {
			vs := VideoStats{VideoID: item.Id}
			if item.Snippet != nil {
				vs.Title = item.Snippet.Title
				vs.PublishedAt, _ = time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			}
			if item.ContentDetails != nil {
				vs.Duration = item.ContentDetails.Duration
			}
			if item.Statistics != nil {
				vs.ViewCount = int64(item.Statistics.ViewCount)
				vs.LikeCount = int64(item.Statistics.LikeCount)
				vs.CommentCount = int64(item.Statistics.CommentCount)
			}
			stats = append(stats, vs)
		}

		if end < len(videoIDs) && c.batchDelay > 0 {
			select {
			case <-time.After(c.batchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return stats, nil
}

func observe(endpoint string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	apiCalls.WithLabelValues(endpoint, outcome).Inc()
}
