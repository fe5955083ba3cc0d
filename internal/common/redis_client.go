package common

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"helping-hands/shiftdesk/internal/config"
	"helping-hands/shiftdesk/internal/logging"
)

// NewRedisClient builds a client from cfg. A failed ping is logged but the
// client is still returned; the pool reconnects on later calls.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	logging.Info("Initializing Redis client", "addr", cfg.Addr, "db", cfg.DB)

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logging.Error("Failed to ping Redis", "addr", cfg.Addr, "error", err)
		return client
	}

	logging.Info("Successfully connected to Redis", "addr", cfg.Addr)
	return client
}
