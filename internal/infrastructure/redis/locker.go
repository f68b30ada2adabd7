package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisIdentityLocker implements the checkout lock on redislock's single
// round-trip SET NX PX. Held lock handles are kept in-process because only
// the acquiring instance releases; everyone else waits for the TTL.
type RedisIdentityLocker struct {
	locker *redislock.Client

	mu   sync.Mutex
	held map[string]*redislock.Lock
}

func NewRedisIdentityLocker(rdb *redis.Client) *RedisIdentityLocker {
	return &RedisIdentityLocker{
		locker: redislock.New(rdb),
		held:   make(map[string]*redislock.Lock),
	}
}

func lockKey(normalizedIdentity string) string {
	return fmt.Sprintf("checkout-lock:%s", normalizedIdentity)
}

func (l *RedisIdentityLocker) TryAcquire(ctx context.Context, normalizedIdentity string, ttl time.Duration) (bool, error) {
	lock, err := l.locker.Obtain(ctx, lockKey(normalizedIdentity), ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return false, nil
		}
		return false, fmt.Errorf("failed to obtain checkout lock: %w", err)
	}

	l.mu.Lock()
	l.held[normalizedIdentity] = lock
	l.mu.Unlock()
	return true, nil
}

func (l *RedisIdentityLocker) Release(ctx context.Context, normalizedIdentity string) error {
	l.mu.Lock()
	lock, ok := l.held[normalizedIdentity]
	delete(l.held, normalizedIdentity)
	l.mu.Unlock()

	if !ok {
		// Not held by this instance: either TTL already expired or another
		// instance owns it. Both are fine, the lock self-expires.
		return nil
	}

	if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		log.Printf("failed to release checkout lock for %s: %v", normalizedIdentity, err)
		return err
	}
	return nil
}
