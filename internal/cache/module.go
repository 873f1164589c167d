package cache

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/stagedoor-labs/stagedoor/internal/config"
	"github.com/stagedoor-labs/stagedoor/pkg/logger"
)

// Module provides the cache hierarchy
var Module = fx.Module("cache",
	fx.Provide(
		NewRedisClient,
		New,
	),
)

// NewRedisClient creates the L1 Redis client, or nil when the layer is
// disabled. Connection failure at startup only logs; the hierarchy runs on
// L0 alone.
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		log.Info("redis cache layer disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable, continuing with in-process cache only",
					slog.String("addr", cfg.Redis.Addr),
					logger.Error(err),
				)
				return nil
			}
			log.Info("redis cache connected", slog.String("addr", cfg.Redis.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return rdb.Close()
		},
	})

	return rdb
}
