package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/cryptopay/internal/adapter/messaging"
	"github.com/polkiloo/cryptopay/internal/config"
	"github.com/polkiloo/cryptopay/internal/domain/repository"
	"github.com/polkiloo/cryptopay/internal/pkg/lock"
	"github.com/polkiloo/cryptopay/internal/server/http/handlers"
	"github.com/polkiloo/cryptopay/internal/worker"
)

// Module wires the HTTP server and starts it together with the background
// workers. It expects Workers in the same graph.
var Module = fx.Options(
	fx.Provide(newHTTPServer),
	fx.Invoke(registerLifecycle),
)

// Workers provides the facade and the background jobs without starting
// anything.
var Workers = fx.Options(
	fx.Provide(
		NewPaymentFacade,
		func(f *PaymentFacade) handlers.PaymentFacade { return f },
		newReconciler,
		newExpirySweeper,
		newOutboxRelay,
	),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *PaymentFacade
	Locker lock.Locker
	Config *config.Config
	Logger *slog.Logger
}

func newReconciler(p workerParams) *worker.Reconciler {
	return worker.NewReconciler(p.Facade, p.Locker, worker.ReconcilerOptions{
		Interval:  p.Config.ReconcileInterval,
		BatchSize: p.Config.ReconcileBatch,
		Workers:   p.Config.WorkerPoolSize,
		LockTTL:   p.Config.JobLockTTL,
	}, p.Logger)
}

func newExpirySweeper(p workerParams) *worker.ExpirySweeper {
	return worker.NewExpirySweeper(p.Facade, p.Locker, p.Config.SweepInterval, p.Config.JobLockTTL, p.Logger)
}

type relayParams struct {
	fx.In

	Outbox    repository.OutboxRepository
	Publisher messaging.Publisher
	Locker    lock.Locker
	Config    *config.Config
	Logger    *slog.Logger
}

func newOutboxRelay(p relayParams) *worker.OutboxRelay {
	return worker.NewOutboxRelay(
		p.Outbox,
		p.Publisher,
		p.Locker,
		p.Config.OutboxInterval,
		p.Config.JobLockTTL,
		p.Config.OutboxBatch,
		p.Logger,
	)
}

// backgroundJob is a worker started and stopped with the application.
type backgroundJob interface {
	Start(ctx context.Context)
	Stop()
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Reconciler *worker.Reconciler
	Sweeper    *worker.ExpirySweeper
	Relay      *worker.OutboxRelay
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	jobs := []backgroundJob{p.Sweeper, p.Reconciler, p.Relay}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting cryptopay", slog.String("addr", p.Server.Addr))
			// The start context expires once startup is over.
			runCtx := context.WithoutCancel(ctx)
			for _, job := range jobs {
				job.Start(runCtx)
			}
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			for _, job := range jobs {
				job.Stop()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("cryptopay stopped")
			return nil
		},
	})
}
