package repository

import (
	"context"
	"time"

	"github.com/polkiloo/cryptopay/internal/domain/model"
)

// AccountRepository applies purchased benefits together with their ledger entry.
type AccountRepository interface {
	ApplyPoints(ctx context.Context, order *model.Order, now time.Time) (*model.LedgerEntry, error)
	ExtendVIP(ctx context.Context, order *model.Order, now time.Time) (*model.LedgerEntry, error)
	Account(ctx context.Context, userID int64) (*model.Account, error)
}

// LedgerRepository exposes ledger history.
type LedgerRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
	ListByOrder(ctx context.Context, orderID string) ([]model.LedgerEntry, error)
}
