package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission is a referral reward credited to one level of the referrer chain.
type Commission struct {
	OrderID    string
	ReferrerID int64
	PayerID    int64
	Level      int
	Rate       decimal.Decimal
	Amount     decimal.Decimal
	Currency   string
	CreatedAt  time.Time
}
