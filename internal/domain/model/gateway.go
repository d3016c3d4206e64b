package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GatewayStatus is the numeric order status reported by the payment gateway.
type GatewayStatus int

const (
	GatewayStatusPending    GatewayStatus = 0
	GatewayStatusProcessing GatewayStatus = 1
	GatewayStatusPaid       GatewayStatus = 2
	GatewayStatusExpired    GatewayStatus = 3
)

// RemoteStatus is the result of querying an order at the gateway.
type RemoteStatus string

const (
	RemoteStatusPending     RemoteStatus = "pending"
	RemoteStatusPaid        RemoteStatus = "paid"
	RemoteStatusExpired     RemoteStatus = "expired"
	RemoteStatusUnsupported RemoteStatus = "unsupported"
)

// RemoteOrder is what the gateway returns for a freshly placed order.
type RemoteOrder struct {
	PaymentAddress string
	ActualAmount   decimal.Decimal
	ExpireAt       time.Time
}

// PaymentNotification is the decoded, already authenticated gateway callback.
type PaymentNotification struct {
	OrderID     string
	Status      GatewayStatus
	TxHash      string
	BlockNumber int64
}

// RemoteState is the gateway's view of an existing order.
type RemoteState struct {
	Status      RemoteStatus
	TxHash      string
	BlockNumber int64
}
