package memcache_fx

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"shiftwise/internal/config"
	"shiftwise/internal/infra"
	mem "shiftwise/pkg/memcache"
)

var Module = fx.Provide(provideRedis, provideStore)

// provideRedis returns a nil client when REDIS_URL is unset.
func provideRedis(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*redis.Client, error) {
	rdb, err := infra.InitRedis(context.Background(), cfg)
	if err != nil || rdb == nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Info("closing redis client")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func provideStore(rdb *redis.Client, logger *slog.Logger) mem.Store {
	if rdb == nil {
		logger.Warn("REDIS_URL not set, using in-process cache")
		return mem.NewInMemoryStore()
	}
	return mem.NewRedisStore(rdb, "shiftwise:")
}
