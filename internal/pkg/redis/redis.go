package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"meridian/kudos_credit_ledger/configs"
	"meridian/kudos_credit_ledger/internal/pkg/logger"
)

type RedisClientConstructor func(opt *redis.Options) *redis.Client

type RedisClient struct {
	Client *redis.Client
}

// ConnectToRedis opens and pings a client; the price feed is read through it.
// newClientFunc exists so tests can swap the constructor.
func ConnectToRedis(ctx context.Context, cfg configs.RedisConfig, newClientFunc RedisClientConstructor) (*RedisClient, error) {
	logger.Info(ctx, "Connecting to Redis addr=%s db=%d", cfg.Addr, cfg.DB)

	options := &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.ConnectTimeout,
		ReadTimeout:  cfg.ConnectTimeout,
		WriteTimeout: cfg.ConnectTimeout,
	}

	if newClientFunc == nil {
		newClientFunc = redis.NewClient
	}
	client := newClientFunc(options)

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error(ctx, "Redis ping failed: %v", err)
		return nil, err
	}

	logger.Info(ctx, "Successfully connected to Redis")
	return &RedisClient{Client: client}, nil
}

func Disconnect(client *redis.Client) error {
	return client.Close()
}
