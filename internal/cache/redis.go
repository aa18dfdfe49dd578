package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prnairport/flight-ops-backend/internal/config"
	"github.com/prnairport/flight-ops-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore backs the per-caller board filter memory and the short-lived
// per-resource scheduling locks
type RedisStore struct {
	client    *redis.Client
	filterTTL time.Duration
}

// NewRedisStore creates a RedisStore from configuration
func NewRedisStore(cfg config.RedisConfig, filterTTL time.Duration) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		filterTTL: filterTTL,
	}
}

// Ping verifies the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// GetBoardFilter returns the caller's saved board filter, or nil when none
// is saved. Reading refreshes the idle expiry.
func (s *RedisStore) GetBoardFilter(ctx context.Context, callerID string) (*models.BoardFilter, error) {
	data, err := s.client.GetEx(ctx, filterKey(callerID), s.filterTTL).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var filter models.BoardFilter
	if err := json.Unmarshal(data, &filter); err != nil {
		return nil, err
	}

	return &filter, nil
}

// SaveBoardFilter remembers the caller's last-used board filter
func (s *RedisStore) SaveBoardFilter(ctx context.Context, callerID string, filter models.BoardFilter) error {
	payload, err := json.Marshal(filter)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, filterKey(callerID), payload, s.filterTTL).Err()
}

// ClearBoardFilter forgets the caller's saved filter
func (s *RedisStore) ClearBoardFilter(ctx context.Context, callerID string) error {
	return s.client.Del(ctx, filterKey(callerID)).Err()
}

// AcquireResourceLock takes the scheduling lock for a gate or desk. The lock
// is held across validate-then-write so two concurrent requests cannot both
// pass the conflict check before either commits. The TTL bounds how long a
// crashed holder can block the resource.
func (s *RedisStore) AcquireResourceLock(ctx context.Context, kind string, resourceID int64, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, lockKey(kind, resourceID), "locked", ttl).Result()
}

// ReleaseResourceLock releases a previously acquired scheduling lock
func (s *RedisStore) ReleaseResourceLock(ctx context.Context, kind string, resourceID int64) error {
	return s.client.Del(ctx, lockKey(kind, resourceID)).Err()
}

func filterKey(callerID string) string {
	return "board:filters:" + callerID
}

func lockKey(kind string, resourceID int64) string {
	return fmt.Sprintf("lock:%s:%d", kind, resourceID)
}
