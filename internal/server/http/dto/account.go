package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountResponse summarizes balances of the current user.
type AccountResponse struct {
	Login             string          `json:"login"`
	Points            int64           `json:"points"`
	VIPActive         bool            `json:"vip_active"`
	VIPExpireAt       *time.Time      `json:"vip_expire_at,omitempty"`
	CommissionBalance decimal.Decimal `json:"commission_balance"`
}

// LedgerEntryResponse is one balance mutation.
type LedgerEntryResponse struct {
	Type          string          `json:"type"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	OrderID       string          `json:"order_id,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
