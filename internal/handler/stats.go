package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/hiel0122/youtuber-analyzer-go/internal/middleware"
	"github.com/hiel0122/youtuber-analyzer-go/internal/repository"
	"github.com/hiel0122/youtuber-analyzer-go/internal/service"
)

type StatsHandler struct {
	sync      *service.SyncService
	snapshots *service.SnapshotService
	runs      *repository.RunRepo
}

func NewStatsHandler(sync *service.SyncService, snapshots *service.SnapshotService, runs *repository.RunRepo) *StatsHandler {
	return &StatsHandler{sync: sync, snapshots: snapshots, runs: runs}
}

// GetStats handles GET /api/channels/:channelId/stats
// Statistics are recomputed from the persisted dataset on every request; the
// snapshot endpoint serves the frozen copies.
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	stats, err := h.sync.Stats(c.Context(), channelID)
	if err != nil {
		if service.IsNotFound(err) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Channel not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute statistics")
	}

	return c.JSON(stats)
}

// GetSnapshot handles GET /api/channels/:channelId/snapshot
func (h *StatsHandler) GetSnapshot(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	snap, err := h.snapshots.Latest(c.Context(), channelID)
	if err != nil {
		if service.IsNotFound(err) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "No completed sync for channel")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load snapshot")
	}

	return c.JSON(snap)
}

// GetRuns handles GET /api/channels/:channelId/runs?limit=N
func (h *StatsHandler) GetRuns(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	limit := fiber.Query[int](c, "limit", 20)
	runs, err := h.runs.ListByChannel(c.Context(), channelID, limit)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list sync runs")
	}

	return c.JSON(fiber.Map{
		"channelId": channelID,
		"runs":      runs,
	})
}
