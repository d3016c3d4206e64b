package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderFulfilled = "order.fulfilled"

// OutboxEvent is a domain event waiting to be relayed to the message broker.
type OutboxEvent struct {
	ID        int64
	EventType string
	Payload   []byte
	Attempts  int
	CreatedAt time.Time
}

// OrderFulfilledEvent is published once an order's benefit has been credited.
type OrderFulfilledEvent struct {
	OrderID  string          `json:"order_id"`
	UserID   int64           `json:"user_id"`
	Type     OrderType       `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Points   int64           `json:"points,omitempty"`
	VIPDays  int             `json:"vip_days,omitempty"`
	PaidAt   *time.Time      `json:"paid_at,omitempty"`
}

// NewOrderFulfilledEvent builds the event body for order.
func NewOrderFulfilledEvent(order *Order) OrderFulfilledEvent {
	return OrderFulfilledEvent{
		OrderID:  order.OrderID,
		UserID:   order.UserID,
		Type:     order.Type,
		Amount:   order.Amount,
		Currency: order.Currency,
		Points:   order.Points,
		VIPDays:  order.VIPDays,
		PaidAt:   order.PaidAt,
	}
}
