// file: database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"ctflab/config"

	"github.com/redis/go-redis/v9"
)

// RDB 为 nil 时缓存关闭，业务直接查库
var RDB *redis.Client

func InitRedis(cfg config.Config) error {
	if cfg.RedisAddr == "" || cfg.RedisAddr == "off" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: 100,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	RDB = client
	return nil
}
