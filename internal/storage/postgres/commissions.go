package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
)

type commissionRepository struct {
	storage *Storage
}

// ReferrerChain returns up to depth ancestors of userID, nearest first.
func (r *commissionRepository) ReferrerChain(ctx context.Context, userID int64, depth int) ([]int64, error) {
	if depth <= 0 {
		return nil, nil
	}
	const query = `WITH RECURSIVE chain (id, referrer_id, depth) AS (
                       SELECT id, referrer_id, 0 FROM users WHERE id=$1
                       UNION ALL
                       SELECT u.id, u.referrer_id, c.depth + 1
                       FROM users u JOIN chain c ON u.id = c.referrer_id
                       WHERE c.depth < $2
                   )
                   SELECT id FROM chain WHERE depth > 0 ORDER BY depth`
	rows, err := r.storage.pool.Query(ctx, query, userID, depth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := map[int64]struct{}{userID: {}}
	var chain []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		// A referral cycle would otherwise pay the same account twice.
		if _, dup := seen[id]; dup {
			break
		}
		seen[id] = struct{}{}
		chain = append(chain, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chain, nil
}

// Credit records the commission, raises the referrer's balance and writes
// the matching ledger entry in one transaction.
func (r *commissionRepository) Credit(ctx context.Context, c *model.Commission) (*model.LedgerEntry, error) {
	var entry *model.LedgerEntry
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertCommission = `INSERT INTO commissions (order_id, referrer_id, payer_id, level, rate, amount, currency)
                                  VALUES ($1, $2, $3, $4, $5, $6, $7)
                                  RETURNING created_at`
		err := tx.QueryRow(ctx, insertCommission,
			c.OrderID, c.ReferrerID, c.PayerID, c.Level, c.Rate, c.Amount, c.Currency,
		).Scan(&c.CreatedAt)
		if err != nil {
			if pgErrorCode(err) == uniqueViolation {
				return domainErrors.ErrAlreadyExists
			}
			return err
		}

		const updateBalance = `UPDATE users SET commission_balance = commission_balance + $2
                               WHERE id=$1
                               RETURNING commission_balance`
		entry = &model.LedgerEntry{
			UserID:      c.ReferrerID,
			Type:        model.LedgerTypeReferralCommission,
			Currency:    c.Currency,
			Amount:      c.Amount,
			OrderID:     c.OrderID,
			Description: fmt.Sprintf("level %d commission from user %d", c.Level, c.PayerID),
			CreatedAt:   c.CreatedAt,
		}
		if err := tx.QueryRow(ctx, updateBalance, c.ReferrerID, c.Amount).Scan(&entry.BalanceAfter); err != nil {
			return err
		}
		entry.BalanceBefore = entry.BalanceAfter.Sub(c.Amount)

		if err := insertLedger(ctx, tx, entry); err != nil {
			if errors.Is(err, domainErrors.ErrAlreadyFulfilled) {
				return domainErrors.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
