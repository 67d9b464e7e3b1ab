package cache

import (
	"context"
	"fmt"
	"time"

	"telehealth-consult/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const pingTimeout = 5 * time.Second

// NewRedisClient connects to the Redis instance holding session tokens and
// carrying chat notifications.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logrus.WithField("addr", client.Options().Addr).Info("Successfully connected to Redis")

	return client, nil
}
