package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
)

func notification(orderID string) model.PaymentNotification {
	return model.PaymentNotification{OrderID: orderID, Status: model.GatewayStatusPaid, TxHash: "0xabc", BlockNumber: 7}
}

func TestPaymentUseCaseSettle(t *testing.T) {
	p := newPipeline()
	user := p.store.AddUser("alice", nil)
	p.store.AddOrder(pendingPointsOrder(user.ID, 100, "10.00"))

	result, err := p.payments.Settle(context.Background(), notification(testOrderID))
	if err != nil || result != SettleApplied {
		t.Fatalf("expected applied, got %s %v", result, err)
	}
	order, _ := p.store.Order(testOrderID)
	if order.Status != model.OrderStatusPaid || order.TxHash != "0xabc" || order.BlockNumber != 7 || order.PaidAt == nil {
		t.Fatalf("unexpected order %+v", order)
	}
	if got := p.store.User(user.ID).Points; got != 100 {
		t.Fatalf("expected points credited, got %d", got)
	}

	result, err = p.payments.Settle(context.Background(), notification(testOrderID))
	if err != nil || result != SettleDuplicate {
		t.Fatalf("expected duplicate, got %s %v", result, err)
	}
	if got := p.store.User(user.ID).Points; got != 100 {
		t.Fatalf("duplicate credited: %d", got)
	}
}

func TestPaymentUseCaseLatePayment(t *testing.T) {
	p := newPipeline()
	user := p.store.AddUser("alice", nil)
	order := pendingPointsOrder(user.ID, 100, "10.00")
	order.Status = model.OrderStatusExpired
	order.ExpireAt = time.Now().Add(-time.Hour)
	p.store.AddOrder(order)

	result, err := p.payments.Settle(context.Background(), notification(testOrderID))
	if err != nil || result != SettleLate {
		t.Fatalf("expected late, got %s %v", result, err)
	}
	stored, _ := p.store.Order(testOrderID)
	if stored.Status != model.OrderStatusExpired {
		t.Fatalf("expired order must stay expired, got %s", stored.Status)
	}
	if got := p.store.User(user.ID).Points; got != 0 {
		t.Fatalf("late payment must not credit, got %d", got)
	}
}

func TestPaymentUseCaseUnknownOrder(t *testing.T) {
	p := newPipeline()
	if _, err := p.payments.Settle(context.Background(), notification("missing")); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPaymentUseCaseFulfillmentFailure(t *testing.T) {
	p := newPipeline()
	user := p.store.AddUser("alice", nil)
	p.store.AddOrder(pendingPointsOrder(user.ID, 100, "10.00"))
	p.store.ApplyErr = errors.New("tx aborted")

	result, err := p.payments.Settle(context.Background(), notification(testOrderID))
	if err == nil || result != SettleApplied {
		t.Fatalf("expected applied with error, got %s %v", result, err)
	}
	order, _ := p.store.Order(testOrderID)
	if order.Status != model.OrderStatusPaid {
		t.Fatalf("order must stay paid for reconciliation, got %s", order.Status)
	}
}

func TestPaymentUseCaseTransitionError(t *testing.T) {
	p := newPipeline()
	p.store.TransitionErr = errors.New("connection reset")
	if _, err := p.payments.Settle(context.Background(), notification(testOrderID)); err == nil {
		t.Fatal("expected transition error")
	}
}
