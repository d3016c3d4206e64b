package repository

import (
	"context"
	"time"

	"github.com/polkiloo/cryptopay/internal/domain/model"
)

// OrderRepository describes persistence operations with payment orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	// TransitionToPaid moves a pending order to paid in one conditional write.
	// applied is false when the order was already terminal; the current row is returned either way.
	TransitionToPaid(ctx context.Context, orderID, txHash string, blockNumber int64, now time.Time) (applied bool, order *model.Order, err error)
	ExpirePending(ctx context.Context, now time.Time) ([]string, error)
	ListPaidUnfulfilled(ctx context.Context, limit int) ([]model.Order, error)
}
