package keylock

import (
	"context"

	"github.com/quotahub/quotad/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideRedis(cfg config.Config, lc fx.Lifecycle, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = ctx
			return client.Close()
		},
	})
	log.Info("distributed key locking enabled", zap.String("addr", cfg.RedisAddr))
	return client
}

func provideGuard(cfg config.Config, client *redis.Client) *Guard {
	return NewGuard(NewKeyMutex(cfg.LockShards), NewLocker(client))
}

var Module = fx.Module("keylock",
	fx.Provide(provideRedis),
	fx.Provide(provideGuard),
)
