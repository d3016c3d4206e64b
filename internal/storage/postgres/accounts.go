package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
)

type accountRepository struct {
	storage *Storage
}

// ApplyPoints credits purchased points, writes the ledger entry and queues
// the fulfillment event atomically.
func (r *accountRepository) ApplyPoints(ctx context.Context, order *model.Order, now time.Time) (*model.LedgerEntry, error) {
	var entry *model.LedgerEntry
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const selectUser = `SELECT points FROM users WHERE id=$1 FOR UPDATE`
		var before int64
		if err := tx.QueryRow(ctx, selectUser, order.UserID).Scan(&before); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		after := before + order.Points

		const updateUser = `UPDATE users SET points=$2 WHERE id=$1`
		if _, err := tx.Exec(ctx, updateUser, order.UserID, after); err != nil {
			return err
		}

		entry = &model.LedgerEntry{
			UserID:        order.UserID,
			Type:          model.LedgerTypePointsPurchase,
			Currency:      model.LedgerUnitPoints,
			Amount:        decimal.NewFromInt(order.Points),
			BalanceBefore: decimal.NewFromInt(before),
			BalanceAfter:  decimal.NewFromInt(after),
			OrderID:       order.OrderID,
			Description:   fmt.Sprintf("purchased %d points", order.Points),
			CreatedAt:     now,
		}
		if err := insertLedger(ctx, tx, entry); err != nil {
			return err
		}
		return enqueueFulfilled(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ExtendVIP stacks the purchased days on top of a running membership or
// starts a fresh one at now.
func (r *accountRepository) ExtendVIP(ctx context.Context, order *model.Order, now time.Time) (*model.LedgerEntry, error) {
	var entry *model.LedgerEntry
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const selectUser = `SELECT vip_expire_at FROM users WHERE id=$1 FOR UPDATE`
		var current *time.Time
		if err := tx.QueryRow(ctx, selectUser, order.UserID).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		next := model.ExtendVIP(current, now, order.VIPDays)
		const updateUser = `UPDATE users SET vip_expire_at=$2 WHERE id=$1`
		if _, err := tx.Exec(ctx, updateUser, order.UserID, next); err != nil {
			return err
		}

		previous := "none"
		if current != nil {
			previous = current.UTC().Format(time.RFC3339)
		}
		entry = &model.LedgerEntry{
			UserID:        order.UserID,
			Type:          model.LedgerTypeVIPPurchase,
			Currency:      model.LedgerUnitVIP,
			Amount:        decimal.Zero,
			BalanceBefore: decimal.Zero,
			BalanceAfter:  decimal.Zero,
			OrderID:       order.OrderID,
			Description: fmt.Sprintf("%s (+%d days): %s -> %s",
				order.VIPPackageName, order.VIPDays, previous, next.UTC().Format(time.RFC3339)),
			CreatedAt: now,
		}
		if err := insertLedger(ctx, tx, entry); err != nil {
			return err
		}
		return enqueueFulfilled(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *accountRepository) Account(ctx context.Context, userID int64) (*model.Account, error) {
	const query = `SELECT id, login, points, vip_expire_at, commission_balance FROM users WHERE id=$1`
	var acc model.Account
	err := r.storage.pool.QueryRow(ctx, query, userID).Scan(
		&acc.UserID, &acc.Login, &acc.Points, &acc.VIPExpireAt, &acc.CommissionBalance,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func insertLedger(ctx context.Context, tx pgx.Tx, entry *model.LedgerEntry) error {
	const query = `INSERT INTO ledger_entries (user_id, type, currency, amount, balance_before, balance_after,
                       order_id, description, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   RETURNING id`
	err := tx.QueryRow(ctx, query,
		entry.UserID, entry.Type, entry.Currency, entry.Amount, entry.BalanceBefore, entry.BalanceAfter,
		entry.OrderID, entry.Description, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		if pgErrorCode(err) == uniqueViolation {
			return domainErrors.ErrAlreadyFulfilled
		}
		return err
	}
	return nil
}

func enqueueFulfilled(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	payload, err := json.Marshal(model.NewOrderFulfilledEvent(order))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	const query = `INSERT INTO outbox_events (event_type, payload) VALUES ($1, $2)`
	_, err = tx.Exec(ctx, query, model.EventOrderFulfilled, payload)
	return err
}
