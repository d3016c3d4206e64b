package repository

import (
	"context"

	"github.com/polkiloo/cryptopay/internal/domain/model"
)

// CommissionRepository resolves referrers and credits referral rewards.
type CommissionRepository interface {
	ReferrerChain(ctx context.Context, userID int64, depth int) ([]int64, error)
	Credit(ctx context.Context, commission *model.Commission) (*model.LedgerEntry, error)
}
