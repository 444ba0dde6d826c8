package redis

import (
	"context"

	"github.com/railzwaylabs/catalogadmin/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to the configured redis instance and verifies it answers.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
