package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/polkiloo/cryptopay/internal/config"
	"github.com/polkiloo/cryptopay/internal/di"
	"github.com/polkiloo/cryptopay/internal/worker"
)

// Flags are parsed by the config package so that file, environment and
// command line share one precedence order.
func newRootCmd(ctx context.Context) *cobra.Command {
	root := &cobra.Command{
		Use:                "cryptopay",
		Short:              "Crypto payment service for points and VIP purchases",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(ctx, args)
		},
	}

	root.AddCommand(&cobra.Command{
		Use:                "serve",
		Short:              "Run the HTTP API and background workers",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(ctx, args)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:                "reconcile",
		Short:              "Expire stale orders and complete unfulfilled payments once, then exit",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return reconcile(ctx, args)
		},
	})

	return root
}

func serve(ctx context.Context, args []string) error {
	cfg, err := config.FromArgs(args)
	if err != nil {
		return err
	}

	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		di.Module(fx.Replace(cfg)),
	)
	return run(ctx, app)
}

func reconcile(ctx context.Context, args []string) error {
	cfg, err := config.FromArgs(args)
	if err != nil {
		return err
	}

	var (
		sweeper    *worker.ExpirySweeper
		reconciler *worker.Reconciler
		relay      *worker.OutboxRelay
		logger     *slog.Logger
	)
	app := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return ctx }),
		di.Core(fx.Replace(cfg)),
		fx.Populate(&sweeper, &reconciler, &relay, &logger),
	)
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	expired, err := sweeper.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("expire stale orders: %w", err)
	}
	completed, err := reconciler.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("reconcile paid orders: %w", err)
	}
	published, err := relay.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("relay events: %w", err)
	}

	logger.Info("reconciliation finished",
		slog.Int("expired", expired),
		slog.Int("completed", completed),
		slog.Int("published", published),
	)
	return nil
}
