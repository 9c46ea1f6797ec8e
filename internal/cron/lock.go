package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/quotecart-backend/pkg/redis"
)

const defaultLockTTL = 10 * time.Minute

// Lock keeps a single worker instance running a cycle at a time.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type redisLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (*redis.Lock, error)
}

// RedisLock is a Lock backed by a SET NX key with a TTL.
type RedisLock struct {
	client redisLocker
	key    string
	ttl    time.Duration
	held   *redis.Lock
}

func NewRedisLock(client redisLocker, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

// Acquire reports false when another instance holds the key.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	held, err := l.client.AcquireLock(ctx, l.key, l.ttl)
	if errors.Is(err, redis.ErrLockHeld) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	l.held = held
	return true, nil
}

// Release frees the key. An already expired lock is not an error.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.held == nil {
		return nil
	}
	held := l.held
	l.held = nil
	if err := held.Release(ctx); err != nil && !errors.Is(err, redis.ErrLockNotHeld) {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}
