package cache

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberredis "github.com/gofiber/storage/redis"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/config"
)

// limiterDatabase keeps rate limiter counters apart from the journal keys.
const limiterDatabase = 1

// SetupCache connects to the Redis/Dragonfly server. It returns nil when no
// cache host is configured.
func SetupCache(cfg config.CacheConfig) *redis.Client {
	if !cfg.Enabled() {
		log.Println("CACHE_HOST not set, running without Redis")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       0,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to cache at %s: %v", cfg.Addr(), err)
	} else {
		log.Printf("Successfully connected to cache: %s", pong)
	}
	return client
}

// NewLimiterStorage returns shared storage for fiber's limiter middleware, or
// nil to keep counters in process memory.
func NewLimiterStorage(cfg config.CacheConfig) fiber.Storage {
	if !cfg.Enabled() {
		return nil
	}
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Printf("invalid CACHE_PORT %q, limiter uses memory storage", cfg.Port)
		return nil
	}
	return fiberredis.New(fiberredis.Config{
		Host:     cfg.Host,
		Port:     port,
		Password: cfg.Password,
		Database: limiterDatabase,
		Reset:    false,
	})
}
