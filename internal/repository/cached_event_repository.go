package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prohmpiriya/tier-events/internal/domain"
	"github.com/prohmpiriya/tier-events/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	eventListKey = "events:all"

	// DefaultEventCacheTTL is used when no TTL is configured
	DefaultEventCacheTTL = 5 * time.Minute
)

// Cache is the subset of the Redis client used for caching
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedEventRepository wraps EventRepository with Redis caching.
// Cache errors are logged and the underlying repository is used instead.
type CachedEventRepository struct {
	repo  EventRepository
	cache Cache
	ttl   time.Duration
}

// NewCachedEventRepository creates a new CachedEventRepository
func NewCachedEventRepository(repo EventRepository, cache Cache, ttl time.Duration) *CachedEventRepository {
	if ttl <= 0 {
		ttl = DefaultEventCacheTTL
	}
	return &CachedEventRepository{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

// ListAll returns the cached event list, filling it from the repository on a miss
func (r *CachedEventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	cached, err := r.cache.Get(ctx, eventListKey).Result()
	switch {
	case err == nil:
		var events []*domain.Event
		if err := json.Unmarshal([]byte(cached), &events); err == nil {
			return events, nil
		}
		logger.Warn("discarding undecodable event cache entry", zap.String("key", eventListKey))
	case err != redis.Nil:
		logger.Warn("event cache read failed", zap.Error(err))
	}

	events, err := r.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	r.store(ctx, events)
	return events, nil
}

func (r *CachedEventRepository) store(ctx context.Context, events []*domain.Event) {
	data, err := json.Marshal(events)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, eventListKey, string(data), r.ttl).Err(); err != nil {
		logger.Warn("event cache write failed", zap.Error(err))
	}
}
