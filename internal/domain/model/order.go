package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType selects the benefit granted once an order is paid.
type OrderType string

const (
	OrderTypePoints OrderType = "points"
	OrderTypeVIP    OrderType = "vip"
)

// OrderStatus describes payment lifecycle. Paid and expired are terminal.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusExpired OrderStatus = "expired"
)

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusExpired
}

// Order is the permanent receipt of one crypto payment request.
type Order struct {
	OrderID        string
	UserID         int64
	Type           OrderType
	Amount         decimal.Decimal
	Currency       string
	ActualAmount   decimal.Decimal
	PaymentAddress string
	Status         OrderStatus
	TxHash         string
	BlockNumber    int64
	Points         int64
	VIPDays        int
	VIPPackageName string
	CreatedAt      time.Time
	ExpireAt       time.Time
	PaidAt         *time.Time
}

// Expired reports whether the payment window has elapsed at the given moment.
func (o *Order) Expired(now time.Time) bool {
	return o.ExpireAt.Before(now)
}
