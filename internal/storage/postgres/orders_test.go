package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
)

var orderRowColumns = []string{
	"order_id", "user_id", "type", "amount", "currency", "actual_amount", "payment_address", "status",
	"tx_hash", "block_number", "points", "vip_days", "vip_package_name", "created_at", "expire_at", "paid_at",
}

func addOrderRow(rows *pgxmockv3.Rows, o model.Order) *pgxmockv3.Rows {
	var paidAt any
	if o.PaidAt != nil {
		paidAt = o.PaidAt
	}
	return rows.AddRow(
		o.OrderID, o.UserID, o.Type, o.Amount, o.Currency, o.ActualAmount, o.PaymentAddress, o.Status,
		o.TxHash, o.BlockNumber, o.Points, o.VIPDays, o.VIPPackageName, o.CreatedAt, o.ExpireAt, paidAt,
	)
}

func sampleOrder(id string, status model.OrderStatus) model.Order {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return model.Order{
		OrderID:        id,
		UserID:         7,
		Type:           model.OrderTypePoints,
		Amount:         decimal.RequireFromString("10.00"),
		Currency:       "usdt.trc20",
		ActualAmount:   decimal.RequireFromString("10.0312"),
		PaymentAddress: "TXyz",
		Status:         status,
		Points:         100,
		CreatedAt:      now,
		ExpireAt:       now.Add(30 * time.Minute),
	}
}

func TestOrderRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	order := sampleOrder("o-1", model.OrderStatusPending)
	createdAt := time.Now()
	args := []any{
		order.OrderID, order.UserID, order.Type, order.Amount, order.Currency, order.ActualAmount, order.PaymentAddress,
		order.Status, order.Points, order.VIPDays, order.VIPPackageName, order.ExpireAt,
	}

	mock.ExpectQuery("INSERT INTO orders").WithArgs(args...).WillReturnRows(
		pgxmockv3.NewRows([]string{"created_at"}).AddRow(createdAt))
	if err := repo.Create(context.Background(), &order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.CreatedAt.Equal(createdAt) {
		t.Fatalf("created_at not populated: %v", order.CreatedAt)
	}

	mock.ExpectQuery("INSERT INTO orders").WithArgs(args...).WillReturnError(&pgconn.PgError{Code: "23505"})
	if err := repo.Create(context.Background(), &order); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO orders").WithArgs(args...).WillReturnError(errors.New("insert"))
	if err := repo.Create(context.Background(), &order); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetAndList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	order := sampleOrder("o-1", model.OrderStatusPending)
	mock.ExpectQuery("SELECT .+ FROM orders WHERE order_id=").WithArgs("o-1").WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderRowColumns), order))
	got, err := repo.GetByOrderID(context.Background(), "o-1")
	if err != nil || got.OrderID != "o-1" || got.Status != model.OrderStatusPending || got.PaidAt != nil {
		t.Fatalf("unexpected order: %+v err=%v", got, err)
	}

	mock.ExpectQuery("SELECT .+ FROM orders WHERE order_id=").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByOrderID(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	rows := pgxmockv3.NewRows(orderRowColumns)
	addOrderRow(rows, sampleOrder("o-2", model.OrderStatusPending))
	addOrderRow(rows, sampleOrder("o-1", model.OrderStatusExpired))
	mock.ExpectQuery("SELECT .+ FROM orders WHERE user_id=").WithArgs(int64(7)).WillReturnRows(rows)
	list, err := repo.ListByUser(context.Background(), 7)
	if err != nil || len(list) != 2 || list[1].Status != model.OrderStatusExpired {
		t.Fatalf("unexpected list: %+v err=%v", list, err)
	}

	mock.ExpectQuery("SELECT .+ FROM orders WHERE user_id=").WithArgs(int64(8)).WillReturnError(errors.New("query"))
	if _, err := repo.ListByUser(context.Background(), 8); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("SELECT .+ FROM orders WHERE user_id=").WithArgs(int64(9)).WillReturnRows(
		pgxmockv3.NewRows(orderRowColumns).
			AddRow("o-3", "bad", model.OrderTypeVIP, decimal.Zero, "", decimal.Zero, "", model.OrderStatusPending,
				"", int64(0), int64(0), 0, "", time.Now(), time.Now(), nil))
	if _, err := repo.ListByUser(context.Background(), 9); err == nil {
		t.Fatal("expected scan error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &orderRepository{storage: storage}

	if _, err := repo.ListByUser(context.Background(), 1); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
	if _, err := repo.ExpirePending(context.Background(), time.Now()); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestOrderRepositoryTransitionToPaid(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	now := time.Date(2024, 5, 1, 12, 5, 0, 0, time.UTC)
	paid := sampleOrder("o-1", model.OrderStatusPaid)
	paid.TxHash = "0xabc"
	paid.BlockNumber = 42
	paid.PaidAt = &now

	t.Run("applied", func(t *testing.T) {
		mock.ExpectQuery("UPDATE orders SET status='paid'").WithArgs("o-1", "0xabc", int64(42), now).WillReturnRows(
			addOrderRow(pgxmockv3.NewRows(orderRowColumns), paid))
		applied, order, err := repo.TransitionToPaid(context.Background(), "o-1", "0xabc", 42, now)
		if err != nil || !applied {
			t.Fatalf("expected applied transition, applied=%v err=%v", applied, err)
		}
		if order.Status != model.OrderStatusPaid || order.TxHash != "0xabc" || order.PaidAt == nil {
			t.Fatalf("unexpected order: %+v", order)
		}
	})

	t.Run("duplicate returns current row", func(t *testing.T) {
		mock.ExpectQuery("UPDATE orders SET status='paid'").WithArgs("o-1", "0xabc", int64(42), now).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT .+ FROM orders WHERE order_id=").WithArgs("o-1").WillReturnRows(
			addOrderRow(pgxmockv3.NewRows(orderRowColumns), paid))
		applied, order, err := repo.TransitionToPaid(context.Background(), "o-1", "0xabc", 42, now)
		if err != nil || applied {
			t.Fatalf("expected no-op, applied=%v err=%v", applied, err)
		}
		if order.Status != model.OrderStatusPaid {
			t.Fatalf("unexpected status: %s", order.Status)
		}
	})

	t.Run("expired is not paid", func(t *testing.T) {
		expired := sampleOrder("o-2", model.OrderStatusExpired)
		mock.ExpectQuery("UPDATE orders SET status='paid'").WithArgs("o-2", "0xdef", int64(1), now).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT .+ FROM orders WHERE order_id=").WithArgs("o-2").WillReturnRows(
			addOrderRow(pgxmockv3.NewRows(orderRowColumns), expired))
		applied, order, err := repo.TransitionToPaid(context.Background(), "o-2", "0xdef", 1, now)
		if err != nil || applied || order.Status != model.OrderStatusExpired {
			t.Fatalf("unexpected result applied=%v order=%+v err=%v", applied, order, err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		mock.ExpectQuery("UPDATE orders SET status='paid'").WithArgs("nope", "0x", int64(0), now).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("SELECT .+ FROM orders WHERE order_id=").WithArgs("nope").WillReturnError(pgx.ErrNoRows)
		if _, _, err := repo.TransitionToPaid(context.Background(), "nope", "0x", 0, now); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("update error", func(t *testing.T) {
		mock.ExpectQuery("UPDATE orders SET status='paid'").WithArgs("o-1", "0xabc", int64(42), now).WillReturnError(errors.New("conn"))
		if _, _, err := repo.TransitionToPaid(context.Background(), "o-1", "0xabc", 42, now); err == nil {
			t.Fatal("expected error")
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryExpirePending(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	now := time.Now()

	mock.ExpectQuery("UPDATE orders SET status='expired' WHERE status='pending' AND expire_at < ").WithArgs(now).WillReturnRows(
		pgxmockv3.NewRows([]string{"order_id"}).AddRow("o-1").AddRow("o-2"))
	ids, err := repo.ExpirePending(context.Background(), now)
	if err != nil || len(ids) != 2 || ids[0] != "o-1" {
		t.Fatalf("unexpected ids: %v err=%v", ids, err)
	}

	mock.ExpectQuery("UPDATE orders SET status='expired'").WithArgs(now).WillReturnRows(pgxmockv3.NewRows([]string{"order_id"}))
	ids, err = repo.ExpirePending(context.Background(), now)
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected nothing expired, got %v err=%v", ids, err)
	}

	mock.ExpectQuery("UPDATE orders SET status='expired'").WithArgs(now).WillReturnError(errors.New("boom"))
	if _, err := repo.ExpirePending(context.Background(), now); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("UPDATE orders SET status='expired'").WithArgs(now).WillReturnRows(
		pgxmockv3.NewRows([]string{"order_id"}).AddRow(int64(5)))
	if _, err := repo.ExpirePending(context.Background(), now); err == nil {
		t.Fatal("expected scan error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListPaidUnfulfilled(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	paid := sampleOrder("o-1", model.OrderStatusPaid)
	mock.ExpectQuery("SELECT .+ FROM orders WHERE status='paid' AND NOT EXISTS").WithArgs(50).WillReturnRows(
		addOrderRow(pgxmockv3.NewRows(orderRowColumns), paid))
	list, err := repo.ListPaidUnfulfilled(context.Background(), 50)
	if err != nil || len(list) != 1 || list[0].OrderID != "o-1" {
		t.Fatalf("unexpected list: %+v err=%v", list, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
