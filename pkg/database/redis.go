package database

import (
	"context"
	"fmt"
	"time"

	"bizdesk/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to redis and pings it once.
func InitRedis(config utils.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", config.Addr, err)
	}
	return client, nil
}
