package config

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the shared redis client used by the rate
// limiter and the page cache.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Redis ping failed: %v", err)
	}

	return rdb
}
