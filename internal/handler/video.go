package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/hiel0122/youtuber-analyzer-go/internal/middleware"
	"github.com/hiel0122/youtuber-analyzer-go/internal/service"
)

type VideoHandler struct {
	svc *service.VideoService
}

func NewVideoHandler(svc *service.VideoService) *VideoHandler {
	return &VideoHandler{svc: svc}
}

// ListByChannel handles GET /api/channels/:channelId/videos?page=N
func (h *VideoHandler) ListByChannel(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	page := fiber.Query[int](c, "page", 0)
	if page < 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", "page must be non-negative")
	}

	videos, err := h.svc.ListPage(c.Context(), channelID, page)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list videos")
	}

	return c.JSON(videos)
}
