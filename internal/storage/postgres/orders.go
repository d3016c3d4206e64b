package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
)

const orderColumns = `order_id, user_id, type, amount, currency, actual_amount, payment_address, status,
       tx_hash, block_number, points, vip_days, vip_package_name, created_at, expire_at, paid_at`

type orderRepository struct {
	storage *Storage
}

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.OrderID, &o.UserID, &o.Type, &o.Amount, &o.Currency, &o.ActualAmount, &o.PaymentAddress, &o.Status,
		&o.TxHash, &o.BlockNumber, &o.Points, &o.VIPDays, &o.VIPPackageName, &o.CreatedAt, &o.ExpireAt, &o.PaidAt,
	)
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (order_id, user_id, type, amount, currency, actual_amount, payment_address,
                       status, points, vip_days, vip_package_name, expire_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
                   RETURNING created_at`
	err := r.storage.pool.QueryRow(ctx, query,
		order.OrderID, order.UserID, order.Type, order.Amount, order.Currency, order.ActualAmount, order.PaymentAddress,
		order.Status, order.Points, order.VIPDays, order.VIPPackageName, order.ExpireAt,
	).Scan(&order.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == uniqueViolation {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE order_id=$1`
	var order model.Order
	if err := scanOrder(r.storage.pool.QueryRow(ctx, query, orderID), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// TransitionToPaid is the only place an order becomes paid. The status
// predicate makes concurrent deliveries race on the row lock; exactly one
// of them sees a returned row.
func (r *orderRepository) TransitionToPaid(ctx context.Context, orderID, txHash string, blockNumber int64, now time.Time) (bool, *model.Order, error) {
	const query = `UPDATE orders SET status='paid', tx_hash=$2, block_number=$3, paid_at=$4
                   WHERE order_id=$1 AND status='pending'
                   RETURNING ` + orderColumns
	var order model.Order
	err := scanOrder(r.storage.pool.QueryRow(ctx, query, orderID, txHash, blockNumber, now), &order)
	if err == nil {
		return true, &order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, nil, err
	}

	current, err := r.GetByOrderID(ctx, orderID)
	if err != nil {
		return false, nil, err
	}
	return false, current, nil
}

func (r *orderRepository) ExpirePending(ctx context.Context, now time.Time) ([]string, error) {
	const query = `UPDATE orders SET status='expired'
                   WHERE status='pending' AND expire_at < $1
                   RETURNING order_id`
	rows, err := r.storage.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *orderRepository) ListPaidUnfulfilled(ctx context.Context, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE status='paid' AND NOT EXISTS (
                       SELECT 1 FROM ledger_entries l
                       WHERE l.order_id = orders.order_id
                         AND l.user_id = orders.user_id
                         AND l.type IN ('points_purchase', 'vip_purchase'))
                   ORDER BY paid_at
                   LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *orderRepository) list(ctx context.Context, query string, arg any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
