package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerType tags the reason of a balance mutation.
type LedgerType string

const (
	LedgerTypePointsPurchase     LedgerType = "points_purchase"
	LedgerTypeVIPPurchase        LedgerType = "vip_purchase"
	LedgerTypeReferralCommission LedgerType = "referral_commission"
)

const (
	LedgerUnitPoints = "points"
	LedgerUnitVIP    = "vip"
)

// LedgerEntry is an append-only audit record of one account mutation.
type LedgerEntry struct {
	ID            int64
	UserID        int64
	Type          LedgerType
	Currency      string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	OrderID       string
	Description   string
	CreatedAt     time.Time
}
