package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/domain/repository"
)

// CommissionNotifier is told about every freshly credited order.
type CommissionNotifier interface {
	OnOrderFulfilled(ctx context.Context, payerID int64, amount decimal.Decimal, orderType model.OrderType, orderID string) error
}

// FulfillmentUseCase credits the benefit of a paid order exactly once.
type FulfillmentUseCase struct {
	accounts    repository.AccountRepository
	commissions CommissionNotifier
	logger      *slog.Logger
	now         func() time.Time
}

// NewFulfillmentUseCase constructs FulfillmentUseCase.
func NewFulfillmentUseCase(accounts repository.AccountRepository, commissions CommissionNotifier, logger *slog.Logger) *FulfillmentUseCase {
	return &FulfillmentUseCase{accounts: accounts, commissions: commissions, logger: logger, now: time.Now}
}

// Fulfill applies order's benefit. It reports whether this call performed the
// credit; an order credited earlier yields false with a nil error.
func (u *FulfillmentUseCase) Fulfill(ctx context.Context, order *model.Order) (bool, error) {
	if order.Status != model.OrderStatusPaid {
		return false, fmt.Errorf("order %s is %s, not paid", order.OrderID, order.Status)
	}

	var err error
	switch order.Type {
	case model.OrderTypePoints:
		if order.Points <= 0 {
			return false, domainErrors.ErrInvalidAmount
		}
		_, err = u.accounts.ApplyPoints(ctx, order, u.now())
	case model.OrderTypeVIP:
		if order.VIPDays <= 0 {
			return false, domainErrors.ErrInvalidAmount
		}
		_, err = u.accounts.ExtendVIP(ctx, order, u.now())
	default:
		return false, fmt.Errorf("unknown order type %q", order.Type)
	}

	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyFulfilled) {
			u.logger.Debug("order already fulfilled", slog.String("order_id", order.OrderID))
			return false, nil
		}
		return false, err
	}

	u.logger.Info("order fulfilled",
		slog.String("order_id", order.OrderID),
		slog.Int64("user_id", order.UserID),
		slog.String("type", string(order.Type)),
	)

	if u.commissions != nil {
		if err := u.commissions.OnOrderFulfilled(ctx, order.UserID, order.Amount, order.Type, order.OrderID); err != nil {
			u.logger.Error("referral commission failed",
				slog.String("order_id", order.OrderID),
				slog.String("error", err.Error()),
			)
		}
	}
	return true, nil
}
