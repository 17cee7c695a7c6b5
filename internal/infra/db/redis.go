package db

import (
	"context"
	"fmt"

	"storefront/internal/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis はRedisに接続してPingまで確認する。
func ConnectRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	var opt *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
