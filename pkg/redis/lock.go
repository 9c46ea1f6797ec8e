package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockHeld is returned when another holder owns the lock.
	ErrLockHeld = errors.New("lock already held")
	// ErrLockNotHeld is returned by Release when the lock expired or was
	// taken over by another holder.
	ErrLockNotHeld = errors.New("lock not held")
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a held SET NX lock. It expires on its own after the TTL.
type Lock struct {
	client *Client
	key    string
	token  string
}

func (l *Lock) Key() string {
	return l.key
}

// CheckoutLockKey returns the lock key guarding checkout of a quote.
func (c *Client) CheckoutLockKey(quoteID string) string {
	return c.key(checkoutLockPrefix, quoteID)
}

// MaintenanceLockKey returns the lock key shared by maintenance workers.
func (c *Client) MaintenanceLockKey() string {
	return c.key(maintenanceLockPrefix)
}

// AcquireLock takes key for ttl or fails with ErrLockHeld.
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	if ttl <= 0 {
		return nil, errors.New("lock ttl must be positive")
	}
	token := uuid.NewString()
	if c.cmd == nil {
		return nil, errNotInitialized
	}
	ok, err := c.cmd.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{client: c, key: key, token: token}, nil
}

// Release frees the lock if this holder still owns it.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || l.client == nil || l.client.cmd == nil {
		return errNotInitialized
	}
	deleted, err := releaseScript.Run(ctx, l.client.cmd, []string{l.key}, l.token).Int64()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrLockNotHeld
	}
	return nil
}
