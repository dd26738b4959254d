package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxRetries    = 5
	retryInterval = 2 * time.Second

	defaultMaxConns = 10
	defaultMinConns = 2
)

// Settings tunes the connection pool for the sync workload. Batch video
// upserts and comment scans hold connections longer than the read endpoints,
// so sizing is deployment-specific.
type Settings struct {
	MaxConns int32
	MinConns int32
}

func NewPool(ctx context.Context, databaseURL string, s Settings) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if s.MaxConns <= 0 {
		s.MaxConns = defaultMaxConns
	}
	if s.MinConns <= 0 {
		s.MinConns = defaultMinConns
	}
	config.MaxConns = s.MaxConns
	config.MinConns = s.MinConns
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= maxRetries; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				log.Printf("database connected (pool max=%d min=%d)", s.MaxConns, s.MinConns)
				return pool, nil
			} else {
				pool.Close()
				err = pingErr
			}
		}

		log.Printf("database connection attempt %d/%d failed: %v", attempt, maxRetries, err)
		if attempt < maxRetries {
			time.Sleep(retryInterval)
		}
	}

	return nil, fmt.Errorf("database connection failed after %d attempts: %w", maxRetries, err)
}
