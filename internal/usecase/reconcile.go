package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/domain/repository"
)

// ReconciliationUseCase repairs orders the webhook path left behind.
type ReconciliationUseCase struct {
	orders    repository.OrderRepository
	fulfiller Fulfiller
	logger    *slog.Logger
}

// NewReconciliationUseCase constructs ReconciliationUseCase.
func NewReconciliationUseCase(orders repository.OrderRepository, fulfiller Fulfiller, logger *slog.Logger) *ReconciliationUseCase {
	return &ReconciliationUseCase{orders: orders, fulfiller: fulfiller, logger: logger}
}

// ExpireStale marks pending orders whose window closed before now as expired.
func (u *ReconciliationUseCase) ExpireStale(ctx context.Context, now time.Time) ([]string, error) {
	ids, err := u.orders.ExpirePending(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		u.logger.Info("expired stale orders", slog.Int("count", len(ids)))
	}
	return ids, nil
}

// PendingFulfillment returns paid orders whose credit has not been applied yet.
func (u *ReconciliationUseCase) PendingFulfillment(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.ListPaidUnfulfilled(ctx, limit)
}

// Complete credits one paid order found by PendingFulfillment.
func (u *ReconciliationUseCase) Complete(ctx context.Context, order model.Order) error {
	credited, err := u.fulfiller.Fulfill(ctx, &order)
	if err != nil {
		return err
	}
	if credited {
		u.logger.Info("reconciled paid order", slog.String("order_id", order.OrderID))
	}
	return nil
}
