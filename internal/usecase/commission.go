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

// CommissionUseCase pays referral rewards up the referrer chain.
type CommissionUseCase struct {
	commissions repository.CommissionRepository
	rates       []decimal.Decimal
	currency    string
	logger      *slog.Logger
	now         func() time.Time
}

// NewCommissionUseCase constructs CommissionUseCase. rates[i] applies to the
// referrer at level i+1; the slice length bounds the chain depth.
func NewCommissionUseCase(commissions repository.CommissionRepository, rates []decimal.Decimal, currency string, logger *slog.Logger) *CommissionUseCase {
	return &CommissionUseCase{
		commissions: commissions,
		rates:       append([]decimal.Decimal(nil), rates...),
		currency:    currency,
		logger:      logger,
		now:         time.Now,
	}
}

// OnOrderFulfilled credits every referrer above payerID. Levels already
// credited for orderID are skipped; failures of individual levels are joined.
func (u *CommissionUseCase) OnOrderFulfilled(ctx context.Context, payerID int64, amount decimal.Decimal, orderType model.OrderType, orderID string) error {
	if len(u.rates) == 0 || !amount.IsPositive() {
		return nil
	}

	chain, err := u.commissions.ReferrerChain(ctx, payerID, len(u.rates))
	if err != nil {
		return fmt.Errorf("resolve referrer chain: %w", err)
	}

	var errs []error
	for i, referrerID := range chain {
		rate := u.rates[i]
		reward := amount.Mul(rate).Round(2)
		if !reward.IsPositive() {
			continue
		}

		commission := &model.Commission{
			OrderID:    orderID,
			ReferrerID: referrerID,
			PayerID:    payerID,
			Level:      i + 1,
			Rate:       rate,
			Amount:     reward,
			Currency:   u.currency,
			CreatedAt:  u.now(),
		}
		if _, err := u.commissions.Credit(ctx, commission); err != nil {
			if errors.Is(err, domainErrors.ErrAlreadyExists) {
				continue
			}
			errs = append(errs, fmt.Errorf("level %d referrer %d: %w", i+1, referrerID, err))
			continue
		}

		u.logger.Info("referral commission credited",
			slog.String("order_id", orderID),
			slog.String("order_type", string(orderType)),
			slog.Int64("referrer_id", referrerID),
			slog.Int("level", i+1),
			slog.String("amount", reward.String()),
		)
	}

	return errors.Join(errs...)
}
