package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/polkiloo/cryptopay/internal/domain/model"
)

func TestReconciliationUseCaseExpireStale(t *testing.T) {
	p := newPipeline()
	user := p.store.AddUser("alice", nil)
	now := time.Now()

	stale := pendingPointsOrder(user.ID, 100, "10.00")
	stale.ExpireAt = now.Add(-time.Minute)
	p.store.AddOrder(stale)

	fresh := pendingPointsOrder(user.ID, 100, "10.00")
	fresh.OrderID = "fresh"
	p.store.AddOrder(fresh)

	paid := pendingPointsOrder(user.ID, 100, "10.00")
	paid.OrderID = "paid"
	paid.Status = model.OrderStatusPaid
	paid.ExpireAt = now.Add(-time.Hour)
	p.store.AddOrder(paid)

	uc := NewReconciliationUseCase(p.store.Orders(), p.fulfillment, discardLogger())
	ids, err := uc.ExpireStale(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != testOrderID {
		t.Fatalf("unexpected expired ids %v", ids)
	}
	if o, _ := p.store.Order("paid"); o.Status != model.OrderStatusPaid {
		t.Fatalf("paid order must never expire, got %s", o.Status)
	}
	if o, _ := p.store.Order("fresh"); o.Status != model.OrderStatusPending {
		t.Fatalf("fresh order must stay pending, got %s", o.Status)
	}
}

func TestReconciliationUseCaseCompletesPaidOrders(t *testing.T) {
	p := newPipeline()
	user := p.store.AddUser("alice", nil)
	order := pendingPointsOrder(user.ID, 100, "10.00")
	order.Status = model.OrderStatusPaid
	p.store.AddOrder(order)

	uc := NewReconciliationUseCase(p.store.Orders(), p.fulfillment, discardLogger())
	pending, err := uc.PendingFulfillment(context.Background(), 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one unfulfilled order, got %d %v", len(pending), err)
	}
	if err := uc.Complete(context.Background(), pending[0]); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got := p.store.User(user.ID).Points; got != 100 {
		t.Fatalf("expected credit, got %d", got)
	}

	pending, err = uc.PendingFulfillment(context.Background(), 10)
	if err != nil || len(pending) != 0 {
		t.Fatalf("expected nothing left, got %d %v", len(pending), err)
	}
	if err := uc.Complete(context.Background(), order); err != nil {
		t.Fatalf("completing twice must be a no-op, got %v", err)
	}
	if got := p.store.User(user.ID).Points; got != 100 {
		t.Fatalf("credited twice: %d", got)
	}
}
