package lock

import (
	"context"
	"log/slog"

	"github.com/polkiloo/cryptopay/internal/config"
	"go.uber.org/fx"
)

// Module provides the job Locker, backed by Redis when REDIS_ADDR is set.
var Module = fx.Options(
	fx.Provide(newLocker),
)

type lockerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newLocker(p lockerParams) Locker {
	if p.Config.RedisAddr == "" {
		p.Logger.Info("job locks are process local")
		return NewLocalLocker()
	}

	locker := NewRedisLocker(p.Config.RedisAddr, p.Config.RedisPassword, p.Config.RedisDB)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := locker.Ping(ctx); err != nil {
				// Ticks fail to lock and are skipped until Redis is back.
				p.Logger.Warn("redis unavailable", slog.String("error", err.Error()))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return locker.Close()
		},
	})
	return locker
}
