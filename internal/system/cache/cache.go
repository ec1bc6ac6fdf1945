// Package cache provides the JSON object cache used for dashboard aggregates
// and the distributed lock used to serialize invitations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/complyhub/compliance-management-api/internal/system/config"
	"github.com/complyhub/compliance-management-api/internal/system/log"
)

// ErrLockNotObtained is returned when another holder owns the lock.
var ErrLockNotObtained = errors.New("lock not obtained")

// Cache stores JSON encoded objects by key.
type Cache interface {
	GetObject(ctx context.Context, key string, dest interface{}) (bool, error)
	SetObject(ctx context.Context, key string, obj interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Locker hands out short-lived exclusive locks.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// Store is a cache that can also hand out locks.
type Store interface {
	Cache
	Locker
}

// RedisCache implements Cache and Locker over a redis client.
type RedisCache struct {
	client *redis.Client
	locker *redislock.Client
}

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}
	log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Cache")).
		Info("Connected to redis", log.String("address", cfg.Address))
	return NewRedisCacheFromClient(client), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, locker: redislock.New(client)}
}

func (r *RedisCache) GetObject(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
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

func (r *RedisCache) SetObject(ctx context.Context, key string, obj interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, payload, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Obtain acquires the lock without retrying.
func (r *RedisCache) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := r.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, err
	}
	return func() {
		// Release with a fresh context so a cancelled request still frees the key.
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.GetLogger().Warn("Failed to release lock", log.String("key", key), log.Error(err))
		}
	}, nil
}

// Close closes the redis connection.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// NoopCache never stores anything and always grants locks. Used when redis is disabled.
type NoopCache struct{}

func (NoopCache) GetObject(context.Context, string, interface{}) (bool, error) { return false, nil }

func (NoopCache) SetObject(context.Context, string, interface{}, time.Duration) error { return nil }

func (NoopCache) Delete(context.Context, ...string) error { return nil }

func (NoopCache) Obtain(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}
