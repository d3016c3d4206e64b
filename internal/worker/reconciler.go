package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/pkg/lock"
)

const reconcileLockKey = "reconcile"

// ReconcileFacade exposes the subset of application functionality required by the reconciler.
type ReconcileFacade interface {
	PendingFulfillment(ctx context.Context, limit int) ([]model.Order, error)
	Complete(ctx context.Context, order model.Order) error
}

// Reconciler finds paid orders whose credit never landed and completes them
// concurrently on a fixed pool of workers.
type Reconciler struct {
	facade    ReconcileFacade
	locker    lock.Locker
	lockTTL   time.Duration
	interval  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// ReconcilerOptions tunes the reconciler schedule and pool.
type ReconcilerOptions struct {
	Interval  time.Duration
	BatchSize int
	Workers   int
	LockTTL   time.Duration
}

// NewReconciler constructs the reconciliation worker pool.
func NewReconciler(facade ReconcileFacade, locker lock.Locker, opts ReconcilerOptions, logger *slog.Logger) *Reconciler {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	return &Reconciler{
		facade:    facade,
		locker:    locker,
		lockTTL:   opts.LockTTL,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
		workers:   opts.Workers,
		logger:    logger,
		jobs:      make(chan model.Order, opts.BatchSize*opts.Workers),
	}
}

// Start launches background processing.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

// RunOnce completes one batch inline and reports how many orders it handled.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	var handled int
	_, err := lock.Run(ctx, r.locker, reconcileLockKey, r.lockTTL, func(ctx context.Context) error {
		orders, err := r.facade.PendingFulfillment(ctx, r.batchSize)
		if err != nil {
			return err
		}
		for _, order := range orders {
			r.handleOrder(ctx, order)
			handled++
		}
		return nil
	})
	return handled, err
}

func (r *Reconciler) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *Reconciler) fetchAndDispatch(ctx context.Context) {
	ran, err := lock.Run(ctx, r.locker, reconcileLockKey, r.lockTTL, func(ctx context.Context) error {
		orders, err := r.facade.PendingFulfillment(ctx, r.batchSize)
		if err != nil {
			return err
		}
		for _, order := range orders {
			select {
			case <-ctx.Done():
				return nil
			case r.jobs <- order:
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("fetch orders for reconciliation failed", slog.String("error", err.Error()))
		return
	}
	if !ran {
		r.logger.Debug("reconciliation skipped, lock busy")
	}
}

func (r *Reconciler) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-r.jobs:
			if !ok {
				return
			}
			r.handleOrder(ctx, order)
		}
	}
}

func (r *Reconciler) handleOrder(ctx context.Context, order model.Order) {
	if err := r.facade.Complete(ctx, order); err != nil {
		r.logger.Error("complete order failed",
			slog.String("order_id", order.OrderID),
			slog.String("error", err.Error()),
		)
	}
}
