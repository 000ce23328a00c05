package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"indiflow-dashboard-api/config"
	"indiflow-dashboard-api/logger"
	"indiflow-dashboard-api/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// StatsChannel carries every freshly loaded stats snapshot.
	StatsChannel = "indiflow:dashboard"
	statsKey     = "dashboard:stats:latest"
	statsTTL     = 10 * time.Minute
)

// CacheService wraps Redis. A service without a client turns every call
// into a no-op so the API keeps working when Redis is down.
type CacheService struct {
	client *redis.Client
	log    *zap.Logger
}

// NewCacheService connects and pings up to attempts times. On failure it
// still returns a usable, disconnected service alongside the error.
func NewCacheService(cfg config.RedisConfig, attempts int, log *zap.Logger) (*CacheService, error) {
	log = logger.OrNop(log)
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var lastErr error
	for i := 0; i < attempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		lastErr = client.Ping(ctx).Err()
		cancel()
		if lastErr == nil {
			log.Info("redis connected", zap.String("addr", cfg.Addr()))
			return &CacheService{client: client, log: log}, nil
		}
		log.Warn("redis ping failed", zap.Int("attempt", i+1), zap.Int("of", attempts), zap.Error(lastErr))
		if i < attempts-1 {
			time.Sleep(2 * time.Second)
		}
	}

	client.Close()
	return NewDisconnectedCache(log), fmt.Errorf("redis ping failed after %d attempts: %w", attempts, lastErr)
}

func NewDisconnectedCache(log *zap.Logger) *CacheService {
	return &CacheService{log: logger.OrNop(log)}
}

func (s *CacheService) Available() bool {
	return s.client != nil
}

// Get decodes key into dest and reports whether it was present.
func (s *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	if s.client == nil {
		return false, nil
	}
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// PublishStats stores stats as the latest snapshot and announces it.
func (s *CacheService) PublishStats(ctx context.Context, stats models.DashboardStats) error {
	if s.client == nil {
		return nil
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, statsKey, data, statsTTL)
	pipe.Publish(ctx, StatsChannel, data)
	_, err = pipe.Exec(ctx)
	return err
}

// LatestStats returns the most recently published snapshot, if any.
func (s *CacheService) LatestStats(ctx context.Context) (models.DashboardStats, bool, error) {
	var stats models.DashboardStats
	ok, err := s.Get(ctx, statsKey, &stats)
	return stats, ok, err
}

func (s *CacheService) Ping(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("redis not configured")
	}
	return s.client.Ping(ctx).Err()
}

// Subscribe returns nil when Redis is unavailable.
func (s *CacheService) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	if s.client == nil {
		return nil
	}
	return s.client.Subscribe(ctx, channel)
}

func (s *CacheService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
