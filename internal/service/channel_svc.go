package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
	"github.com/hiel0122/youtuber-analyzer-go/internal/repository"
)

// ChannelService serves channel lookups and free-form channel resolution.
// Lookups are cache-aside over Redis with Postgres as the source of truth.
type ChannelService struct {
	repo     *repository.ChannelRepo
	comments *repository.CommentRepo
	cache    *SnapshotService
	resolver Resolver
}

func NewChannelService(repo *repository.ChannelRepo, comments *repository.CommentRepo, cache *SnapshotService, resolver Resolver) *ChannelService {
	return &ChannelService{repo: repo, comments: comments, cache: cache, resolver: resolver}
}

// Resolve maps free-form input (URL, @handle, bare ID) to a canonical channel
// identity via the API and persists it, so later syncs and lookups share one
// row per channel.
func (s *ChannelService) Resolve(ctx context.Context, input string) (*model.ResolveResponse, error) {
	info, err := s.resolver.ResolveChannel(ctx, input)
	if err != nil {
		return &model.ResolveResponse{OK: false, Error: err.Error()}, err
	}

	ch := &model.Channel{
		ChannelID:             info.ChannelID,
		Title:                 info.Title,
		SubscriberCount:       info.SubscriberCount,
		TotalViews:            info.ViewCount,
		TotalVideos:           info.VideoCount,
		HiddenSubscriberCount: info.HiddenSubscriberCount,
		OfficialArtist:        info.OfficialArtist,
		UploadsPlaylistID:     info.UploadsPlaylistID,
	}
	if err := s.repo.Upsert(ctx, ch); err != nil {
		return nil, fmt.Errorf("persist resolved channel: %w", err)
	}
	if err := s.cache.InvalidateChannel(ctx, info.ChannelID); err == nil {
		_ = s.cache.SetChannel(ctx, info.ChannelID, ch)
	}

	return &model.ResolveResponse{
		OK:          true,
		ChannelID:   info.ChannelID,
		TotalVideos: info.VideoCount,
	}, nil
}

// Lookup returns the stored channel with its comment rollup, cache first for
// the identity row.
func (s *ChannelService) Lookup(ctx context.Context, channelID string) (*model.ChannelResponse, error) {
	var ch *model.Channel
	if cached, err := s.cache.GetChannel(ctx, channelID); err == nil && cached != nil {
		var decoded model.Channel
		if json.Unmarshal(cached, &decoded) == nil {
			ch = &decoded
		}
	}
	if ch == nil {
		stored, err := s.repo.FindByChannelID(ctx, channelID)
		if err != nil {
			return nil, err
		}
		ch = stored
		_ = s.cache.SetChannel(ctx, channelID, ch)
	}

	resp := &model.ChannelResponse{
		ChannelID:       ch.ChannelID,
		Title:           ch.Title,
		SubscriberCount: ch.SubscriberCount,
		TotalViews:      ch.TotalViews,
		TotalVideos:     ch.TotalVideos,
	}
	if ch.LastUploadAt != nil {
		resp.LastUploadAt = ch.LastUploadAt.Format(time.RFC3339)
	}

	agg, err := s.comments.Aggregate(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("load comment aggregate: %w", err)
	}
	resp.CommentsTotal = agg.CommentsTotal
	resp.Aggregate = agg
	return resp, nil
}

// SubscriberHistory returns recorded subscriber points since the given time,
// oldest first.
func (s *ChannelService) SubscriberHistory(ctx context.Context, channelID string, since time.Time) ([]model.SubscriberPoint, error) {
	return s.repo.SubscriberHistory(ctx, channelID, since)
}

// IsNotFound reports whether a lookup error means the channel is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
