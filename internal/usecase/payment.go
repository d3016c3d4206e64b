package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/domain/repository"
)

// SettleResult describes what a payment confirmation did to the order.
type SettleResult string

const (
	// SettleApplied means this confirmation moved the order to paid.
	SettleApplied SettleResult = "applied"
	// SettleDuplicate means the order had already been paid.
	SettleDuplicate SettleResult = "duplicate"
	// SettleLate means the order expired before the payment arrived.
	SettleLate SettleResult = "late"
	// SettleIgnored means the confirmation carried a non-final status.
	SettleIgnored SettleResult = "ignored"
)

// Fulfiller credits a paid order.
type Fulfiller interface {
	Fulfill(ctx context.Context, order *model.Order) (bool, error)
}

// PaymentUseCase settles confirmed payments against stored orders.
type PaymentUseCase struct {
	orders    repository.OrderRepository
	fulfiller Fulfiller
	logger    *slog.Logger
	now       func() time.Time
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(orders repository.OrderRepository, fulfiller Fulfiller, logger *slog.Logger) *PaymentUseCase {
	return &PaymentUseCase{orders: orders, fulfiller: fulfiller, logger: logger, now: time.Now}
}

// Settle records a confirmed payment. Only the caller that wins the
// pending to paid transition runs fulfillment. A fulfillment error is
// returned with SettleApplied; the reconciler finishes such orders later.
func (u *PaymentUseCase) Settle(ctx context.Context, n model.PaymentNotification) (SettleResult, error) {
	applied, order, err := u.orders.TransitionToPaid(ctx, n.OrderID, n.TxHash, n.BlockNumber, u.now())
	if err != nil {
		return "", err
	}

	if !applied {
		if order.Status == model.OrderStatusExpired {
			u.logger.Warn("payment received for expired order",
				slog.String("order_id", order.OrderID),
				slog.Int64("user_id", order.UserID),
				slog.String("tx_hash", n.TxHash),
			)
			return SettleLate, nil
		}
		return SettleDuplicate, nil
	}

	u.logger.Info("order paid",
		slog.String("order_id", order.OrderID),
		slog.String("tx_hash", n.TxHash),
		slog.Int64("block_number", n.BlockNumber),
	)

	if _, err := u.fulfiller.Fulfill(ctx, order); err != nil {
		return SettleApplied, fmt.Errorf("fulfill order %s: %w", order.OrderID, err)
	}
	return SettleApplied, nil
}
