package handler

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/hiel0122/youtuber-analyzer-go/internal/middleware"
	"github.com/hiel0122/youtuber-analyzer-go/internal/service"
)

type ExportHandler struct {
	svc *service.VideoService
}

func NewExportHandler(svc *service.VideoService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// ExportCSV handles GET /api/channels/:channelId/export
// Streams the channel's full video table as CSV, newest first.
func (h *ExportHandler) ExportCSV(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	videos, err := h.svc.ListAll(c.Context(), channelID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export videos")
	}
	if len(videos) == 0 {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "No videos stored for channel")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"video_id", "title", "upload_date", "duration", "views", "likes", "is_short", "url"})
	for _, v := range videos {
		_ = w.Write([]string{
			v.VideoID,
			v.Title,
			v.UploadDate.Format(time.RFC3339),
			v.DurationText,
			strconv.FormatInt(v.Views, 10),
			strconv.FormatInt(v.Likes, 10),
			strconv.FormatBool(v.IsShort),
			v.URL,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to encode CSV")
	}

	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", "attachment; filename="+channelID+"-videos.csv")
	return c.Send(buf.Bytes())
}
