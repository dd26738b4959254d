package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
	"github.com/hiel0122/youtuber-analyzer-go/internal/repository"
)

var (
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytanalyzer_cache_hits_total",
		Help: "Total Redis cache hits.",
	})
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytanalyzer_cache_misses_total",
		Help: "Total Redis cache misses.",
	})
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMisses)
}

// Redis key TTLs.
const (
	SnapshotCacheTTL = 30 * time.Minute
	ChannelCacheTTL  = 15 * time.Minute
)

// SnapshotService stores point-in-time sync snapshots: Redis for fast replay,
// Postgres for durable history. If Redis is unavailable the cache degrades to
// a no-op and only the durable copy is written.
type SnapshotService struct {
	rdb  *redis.Client
	repo *repository.SnapshotRepo
}

// NewSnapshotService connects to Redis. An empty URL or a failed connection
// disables caching rather than failing startup.
func NewSnapshotService(redisURL string, repo *repository.SnapshotRepo) *SnapshotService {
	svc := &SnapshotService{repo: repo}
	if redisURL == "" {
		log.Println("redis: no URL configured, snapshot caching disabled")
		return svc
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, snapshot caching disabled: %v", redisURL, err)
		return svc
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, snapshot caching disabled: %v", err)
		return svc
	}

	log.Println("redis: connected, snapshot caching enabled")
	svc.rdb = rdb
	return svc
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (s *SnapshotService) Client() *redis.Client {
	return s.rdb
}

// Save persists a snapshot durably and caches it.
func (s *SnapshotService) Save(ctx context.Context, snap *model.Snapshot) error {
	if err := s.repo.Save(ctx, snap); err != nil {
		return err
	}
	if s.rdb != nil {
		b, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		if err := s.rdb.Set(ctx, snapshotKey(snap.ChannelID), b, SnapshotCacheTTL).Err(); err != nil {
			log.Printf("cache: snapshot set error: %v", err)
		}
	}
	return nil
}

// Latest returns the most recent snapshot, cache first.
func (s *SnapshotService) Latest(ctx context.Context, channelID string) (*model.Snapshot, error) {
	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, snapshotKey(channelID)).Bytes()
		if err == nil {
			var snap model.Snapshot
			if err := json.Unmarshal(data, &snap); err == nil {
				cacheHits.Inc()
				return &snap, nil
			}
		} else if err != redis.Nil {
			log.Printf("cache: snapshot get error: %v", err)
		}
		cacheMisses.Inc()
	}

	snap, err := s.repo.Latest(ctx, channelID)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if b, err := json.Marshal(snap); err == nil {
			if err := s.rdb.Set(ctx, snapshotKey(channelID), b, SnapshotCacheTTL).Err(); err != nil {
				log.Printf("cache: snapshot set error: %v", err)
			}
		}
	}
	return snap, nil
}

// GetChannel retrieves a cached channel response. Returns nil when not cached
// or the cache is disabled.
func (s *SnapshotService) GetChannel(ctx context.Context, channelID string) ([]byte, error) {
	if s.rdb == nil {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, channelKey(channelID)).Bytes()
	if err == redis.Nil {
		cacheMisses.Inc()
		return nil, nil
	}
	if err == nil {
		cacheHits.Inc()
	}
	return data, err
}

// SetChannel caches a channel response.
func (s *SnapshotService) SetChannel(ctx context.Context, channelID string, data interface{}) error {
	if s.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, channelKey(channelID), b, ChannelCacheTTL).Err()
}

// InvalidateChannel removes a channel from cache (called after a sync).
func (s *SnapshotService) InvalidateChannel(ctx context.Context, channelID string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, channelKey(channelID)).Err()
}

// Close shuts down the Redis connection.
func (s *SnapshotService) Close() error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func snapshotKey(channelID string) string {
	return fmt.Sprintf("snapshot:%s", channelID)
}

func channelKey(channelID string) string {
	return fmt.Sprintf("channel:%s", channelID)
}
