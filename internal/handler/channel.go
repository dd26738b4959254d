package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/hiel0122/youtuber-analyzer-go/internal/middleware"
	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
	"github.com/hiel0122/youtuber-analyzer-go/internal/service"
	"github.com/hiel0122/youtuber-analyzer-go/internal/youtube"
)

type ChannelHandler struct {
	svc *service.ChannelService
}

func NewChannelHandler(svc *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{svc: svc}
}

// Resolve handles POST /api/channels/resolve
func (h *ChannelHandler) Resolve(c fiber.Ctx) error {
	var req model.ResolveRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
	}

	input, errMsg := middleware.ValidateChannelInput(req.Channel)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.Resolve(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, youtube.ErrChannelNotFound):
			return c.Status(fiber.StatusNotFound).JSON(resp)
		case errors.Is(err, youtube.ErrQuotaExceeded):
			return c.Status(fiber.StatusTooManyRequests).JSON(resp)
		case resp != nil:
			return c.Status(fiber.StatusBadGateway).JSON(resp)
		default:
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve channel")
		}
	}

	return c.JSON(resp)
}

// GetByChannelID handles GET /api/channels/:channelId
func (h *ChannelHandler) GetByChannelID(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.Lookup(c.Context(), channelID)
	if err != nil {
		if service.IsNotFound(err) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Channel not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup channel")
	}

	return c.JSON(resp)
}

// GetSubscriberHistory handles GET /api/channels/:channelId/subscribers?days=N
func (h *ChannelHandler) GetSubscriberHistory(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	days := fiber.Query[int](c, "days", 365)
	if days < 1 || days > 3650 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", "days must be between 1 and 3650")
	}

	since := time.Now().AddDate(0, 0, -days)
	points, err := h.svc.SubscriberHistory(c.Context(), channelID, since)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load subscriber history")
	}

	return c.JSON(fiber.Map{
		"channelId": channelID,
		"points":    points,
	})
}
