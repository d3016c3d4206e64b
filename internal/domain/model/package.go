package model

import "github.com/shopspring/decimal"

// Package is a purchasable catalog item.
type Package struct {
	Code    string
	Type    OrderType
	Name    string
	Amount  decimal.Decimal
	Points  int64
	VIPDays int
}
