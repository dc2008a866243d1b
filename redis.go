package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisOptions accepts both redis://host:port URLs and bare host:port.
func redisOptions(redisURL string) *redis.Options {
	if !strings.Contains(redisURL, "://") {
		redisURL = "redis://" + redisURL
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// Fallback to simple connection
		return &redis.Options{Addr: strings.TrimPrefix(redisURL, "redis://")}
	}
	return opt
}

// initRedis connects to Redis and pings it.
func initRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	client := redis.NewClient(redisOptions(redisURL))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
