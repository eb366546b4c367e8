package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/retailops/backend/internal/application/idempotency"
)

// RedisRequestLock implements idempotency.RequestLock using Redis SETNX.
// Suitable for distributed deployments where multiple instances need to
// agree on who owns a key's first attempt.
type RedisRequestLock struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRequestLock creates a new Redis-backed request lock
func NewRedisRequestLock(cfg RedisConfig) (*RedisRequestLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRequestLock{
		client:    client,
		keyPrefix: "idempotency:lock:",
	}, nil
}

// NewRedisRequestLockWithClient creates a lock with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisRequestLockWithClient(client *redis.Client, keyPrefix string) *RedisRequestLock {
	if keyPrefix == "" {
		keyPrefix = "idempotency:lock:"
	}
	return &RedisRequestLock{client: client, keyPrefix: keyPrefix}
}

// Acquire takes the lock via SETNX with a TTL in one atomic operation.
// Returns false when another request already holds it.
func (l *RedisRequestLock) Acquire(ctx context.Context, tenantID uuid.UUID, route, key string, ttl time.Duration) (bool, error) {
	acquired, err := l.client.SetNX(ctx, l.lockKey(tenantID, route, key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire request lock: %w", err)
	}
	return acquired, nil
}

// Release frees the lock
func (l *RedisRequestLock) Release(ctx context.Context, tenantID uuid.UUID, route, key string) error {
	if err := l.client.Del(ctx, l.lockKey(tenantID, route, key)).Err(); err != nil {
		return fmt.Errorf("failed to release request lock: %w", err)
	}
	return nil
}

func (l *RedisRequestLock) lockKey(tenantID uuid.UUID, route, key string) string {
	return l.keyPrefix + tenantID.String() + ":" + route + ":" + key
}

// Close closes the Redis client
func (l *RedisRequestLock) Close() error {
	return l.client.Close()
}

// Ensure RedisRequestLock implements RequestLock
var _ idempotency.RequestLock = (*RedisRequestLock)(nil)
