package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Compensation events live in a sorted set per identity, scored by unix
// time, so the trailing-window count is a single ZCOUNT. The set expires
// on its own once the newest event ages past the window.
const compensationWindow = 90 * 24 * time.Hour

type RedisCompensationCounter struct {
	rdb *redis.Client
}

func NewRedisCompensationCounter(rdb *redis.Client) *RedisCompensationCounter {
	return &RedisCompensationCounter{rdb: rdb}
}

func compensationKey(normalizedIdentity string) string {
	return fmt.Sprintf("compensations:%s", normalizedIdentity)
}

func (c *RedisCompensationCounter) RecordCompensation(ctx context.Context, normalizedIdentity string, at time.Time) error {
	key := compensationKey(normalizedIdentity)
	pipe := c.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(at.Unix()),
		Member: strconv.FormatInt(at.UnixNano(), 10),
	})
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(at.Add(-compensationWindow).Unix(), 10))
	pipe.Expire(ctx, key, compensationWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record compensation: %w", err)
	}
	return nil
}

func (c *RedisCompensationCounter) CountSince(ctx context.Context, normalizedIdentity string, since time.Time) (int64, error) {
	count, err := c.rdb.ZCount(ctx,
		compensationKey(normalizedIdentity),
		strconv.FormatInt(since.Unix(), 10),
		"+inf",
	).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count compensations: %w", err)
	}
	return count, nil
}

// RedisRejectionCounter buckets webhook rejections per cause per hour.
type RedisRejectionCounter struct {
	rdb *redis.Client
}

func NewRedisRejectionCounter(rdb *redis.Client) *RedisRejectionCounter {
	return &RedisRejectionCounter{rdb: rdb}
}

func (c *RedisRejectionCounter) IncrRejection(ctx context.Context, cause string) (int64, error) {
	key := fmt.Sprintf("webhook-rejections:%s:%s", cause, time.Now().UTC().Format("2006010215"))
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to count webhook rejection: %w", err)
	}
	return incr.Val(), nil
}
