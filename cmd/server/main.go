package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"

	"github.com/hiel0122/youtuber-analyzer-go/internal/config"
	"github.com/hiel0122/youtuber-analyzer-go/internal/db"
	"github.com/hiel0122/youtuber-analyzer-go/internal/handler"
	"github.com/hiel0122/youtuber-analyzer-go/internal/middleware"
	"github.com/hiel0122/youtuber-analyzer-go/internal/repository"
	"github.com/hiel0122/youtuber-analyzer-go/internal/router"
	"github.com/hiel0122/youtuber-analyzer-go/internal/scan"
	"github.com/hiel0122/youtuber-analyzer-go/internal/service"
	"github.com/hiel0122/youtuber-analyzer-go/internal/stats"
	"github.com/hiel0122/youtuber-analyzer-go/internal/youtube"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "ytanalyzer")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.Settings{
		MaxConns: int32(cfg.DBMaxConns),
		MinConns: int32(cfg.DBMinConns),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	yt, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		log.Fatalf("failed to init YouTube client: %v", err)
	}

	channelRepo := repository.NewChannelRepo(pool)
	videoRepo := repository.NewVideoRepo(pool)
	commentRepo := repository.NewCommentRepo(pool)
	runRepo := repository.NewRunRepo(pool)
	snapshotRepo := repository.NewSnapshotRepo(pool)

	snapshotSvc := service.NewSnapshotService(cfg.RedisURL, snapshotRepo)
	defer snapshotSvc.Close()

	engine := scan.NewEngine(yt, commentRepo, cfg.BackfillWindow)
	tracker := service.NewProgressTracker()
	syncSvc := service.NewSyncService(
		yt, yt, engine,
		channelRepo, videoRepo, commentRepo, runRepo, snapshotSvc,
		stats.NewKeywordTagger(), tracker, cfg.ProgressPollInterval,
	)
	channelSvc := service.NewChannelService(channelRepo, commentRepo, snapshotSvc, yt)
	videoSvc := service.NewVideoService(videoRepo)

	handler.InitMetrics(pool)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if cfg.RefreshInterval > 0 {
		worker := service.NewRefreshWorker(pool, channelRepo, yt, cfg.RefreshInterval)
		go worker.Start(workerCtx)
	}

	app := fiber.New(fiber.Config{
		AppName:      "YouTuber Analyzer API",
		ServerHeader: "ytanalyzer",
	})

	router.Setup(app, &router.Handlers{
		Channel: handler.NewChannelHandler(channelSvc),
		Video:   handler.NewVideoHandler(videoSvc),
		Stats:   handler.NewStatsHandler(syncSvc, snapshotSvc, runRepo),
		Sync:    handler.NewSyncHandler(syncSvc),
		Export:  handler.NewExportHandler(videoSvc),
		Health:  handler.NewHealthHandler(pool, snapshotSvc.Client()),
	}, cfg.CORSOrigins)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down")
		_ = app.Shutdown()
	}()

	log.Printf("analyzer backend starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
