package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/hiel0122/youtuber-analyzer-go/internal/middleware"
	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
	"github.com/hiel0122/youtuber-analyzer-go/internal/service"
)

type SyncHandler struct {
	svc *service.SyncService
}

func NewSyncHandler(svc *service.SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// StartSync handles POST /api/sync
func (h *SyncHandler) StartSync(c fiber.Ctx) error {
	var req model.SyncRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
	}

	input, errMsg := middleware.ValidateChannelInput(req.Channel)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	start := time.Now()
	resp := h.svc.Sync(c.Context(), input, req.FullSync)
	if Metrics.SyncDuration != nil {
		Metrics.SyncDuration.Observe(time.Since(start).Seconds())
	}
	if Metrics.SyncsTotal != nil {
		Metrics.SyncsTotal.WithLabelValues(outcomeLabel(resp.OK)).Inc()
	}

	if !resp.OK {
		return c.Status(fiber.StatusBadGateway).JSON(resp)
	}
	return c.JSON(resp)
}

// GetProgress handles GET /api/sync/progress?channelId=X
func (h *SyncHandler) GetProgress(c fiber.Ctx) error {
	channelID := fiber.Query[string](c, "channelId")
	if channelID == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_PARAM", "channelId query parameter is required")
	}

	progress, ok := h.svc.Progress(channelID)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "No sync recorded for channel")
	}

	return c.JSON(progress)
}

func outcomeLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
