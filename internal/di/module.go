package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/cryptopay/internal/adapter/gateway"
	"github.com/polkiloo/cryptopay/internal/adapter/messaging"
	"github.com/polkiloo/cryptopay/internal/app"
	"github.com/polkiloo/cryptopay/internal/config"
	"github.com/polkiloo/cryptopay/internal/logger"
	"github.com/polkiloo/cryptopay/internal/pkg/auth"
	"github.com/polkiloo/cryptopay/internal/pkg/lock"
	"github.com/polkiloo/cryptopay/internal/server/http/router"
	"github.com/polkiloo/cryptopay/internal/storage/postgres"
	"github.com/polkiloo/cryptopay/internal/usecase"
)

// Core wires everything but the HTTP server and the lifecycle of the
// background workers.
func Core(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		lock.Module,
		postgres.Module,
		gateway.Module,
		messaging.Module,
		usecase.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		app.Workers,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// Module wires the full service.
func Module(opts ...fx.Option) fx.Option {
	return Core(append([]fx.Option{router.Module, app.Module}, opts...)...)
}
