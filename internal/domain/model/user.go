package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a member account holding purchased benefits.
type User struct {
	ID                int64
	Login             string
	PasswordHash      string
	ReferrerID        *int64
	Points            int64
	VIPExpireAt       *time.Time
	CommissionBalance decimal.Decimal
	CreatedAt         time.Time
}

// VIPActive reports whether VIP membership is still running at now.
func (u *User) VIPActive(now time.Time) bool {
	return u.VIPExpireAt != nil && u.VIPExpireAt.After(now)
}

// Account summarizes user balances for presentation.
type Account struct {
	UserID            int64
	Login             string
	Points            int64
	VIPExpireAt       *time.Time
	CommissionBalance decimal.Decimal
}

// ExtendVIP stacks days on top of a running membership, or starts counting
// from now when there is none.
func ExtendVIP(current *time.Time, now time.Time, days int) time.Time {
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	return base.Add(time.Duration(days) * 24 * time.Hour)
}
