package postgres

import (
	"context"

	"github.com/polkiloo/cryptopay/internal/domain/model"
)

const ledgerColumns = `id, user_id, type, currency, amount, balance_before, balance_after, order_id, description, created_at`

type ledgerRepository struct {
	storage *Storage
}

func (r *ledgerRepository) ListByUser(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	const query = `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID)
}

func (r *ledgerRepository) ListByOrder(ctx context.Context, orderID string) ([]model.LedgerEntry, error) {
	const query = `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE order_id=$1 ORDER BY id`
	return r.list(ctx, query, orderID)
}

func (r *ledgerRepository) list(ctx context.Context, query string, arg any) ([]model.LedgerEntry, error) {
	rows, err := r.storage.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Currency, &e.Amount, &e.BalanceBefore, &e.BalanceAfter,
			&e.OrderID, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
