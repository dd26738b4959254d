package service

import (
	"context"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
	"github.com/hiel0122/youtuber-analyzer-go/internal/repository"
)

// VideoService reads back the persisted video catalog for display.
type VideoService struct {
	repo *repository.VideoRepo
}

func NewVideoService(repo *repository.VideoRepo) *VideoService {
	return &VideoService{repo: repo}
}

// ListPage returns one page of a channel's videos, newest first. Page numbers
// start at 0.
func (s *VideoService) ListPage(ctx context.Context, channelID string, page int) (*model.VideoPage, error) {
	if page < 0 {
		page = 0
	}
	return s.repo.ListByChannel(ctx, channelID, page)
}

// ListAll reads back the entire stored catalog for a channel, newest first.
func (s *VideoService) ListAll(ctx context.Context, channelID string) ([]model.Video, error) {
	return s.repo.ListAllByChannel(ctx, channelID)
}
