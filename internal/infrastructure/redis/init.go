package redis

import (
	"context"
	"log"

	"github.com/docugen/fulfillment-service/internal/config"
	"github.com/redis/go-redis/v9"
)

func MustInitRedis(cfg *config.FulfillmentConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: 100,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("failed to connect redis at %s: %v\n", cfg.Redis.Addr, err)
	}

	return rdb
}
