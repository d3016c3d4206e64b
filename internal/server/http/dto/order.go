package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest selects a catalog package and the settlement currency.
type CreateOrderRequest struct {
	Package  string `json:"package"`
	Currency string `json:"currency"`
}

// OrderResponse represents a payment order.
type OrderResponse struct {
	OrderID        string          `json:"order_id"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	ActualAmount   decimal.Decimal `json:"actual_amount"`
	PaymentAddress string          `json:"payment_address"`
	Points         int64           `json:"points,omitempty"`
	VIPDays        int             `json:"vip_days,omitempty"`
	TxHash         string          `json:"tx_hash,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	ExpireAt       time.Time       `json:"expire_at"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
}

// PackageResponse represents a purchasable catalog item.
type PackageResponse struct {
	Code    string          `json:"code"`
	Type    string          `json:"type"`
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	Points  int64           `json:"points,omitempty"`
	VIPDays int             `json:"vip_days,omitempty"`
}
