package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/hiel0122/youtuber-analyzer-go/internal/handler"
	"github.com/hiel0122/youtuber-analyzer-go/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Channel *handler.ChannelHandler
	Video   *handler.VideoHandler
	Stats   *handler.StatsHandler
	Sync    *handler.SyncHandler
	Export  *handler.ExportHandler
	Health  *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	// Health and metrics (before API group)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	readLimit := middleware.NewReadRateLimiter().Handler()
	resolveLimit := middleware.NewResolveRateLimiter().Handler()
	syncLimit := middleware.NewSyncRateLimiter().Handler()

	// API routes
	api := app.Group("/api")

	// Channel resolution and sync
	api.Post("/channels/resolve", h.Channel.Resolve, resolveLimit)
	api.Post("/sync", h.Sync.StartSync, syncLimit)
	api.Get("/sync/progress", h.Sync.GetProgress, readLimit)

	// Channel reads
	api.Get("/channels/:channelId", h.Channel.GetByChannelID, readLimit)
	api.Get("/channels/:channelId/videos", h.Video.ListByChannel, readLimit)
	api.Get("/channels/:channelId/stats", h.Stats.GetStats, readLimit)
	api.Get("/channels/:channelId/snapshot", h.Stats.GetSnapshot, readLimit)
	api.Get("/channels/:channelId/runs", h.Stats.GetRuns, readLimit)
	api.Get("/channels/:channelId/subscribers", h.Channel.GetSubscriberHistory, readLimit)
	api.Get("/channels/:channelId/export", h.Export.ExportCSV, readLimit)
}
