package test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/pkg/signature"
)

// SampleOrderID is the order identifier returned by default facade stubs.
const SampleOrderID = "3f2c9a1e-6b7d-4e8f-a0b1-c2d3e4f5a6b7"

// SampleOrder returns a pending order owned by userID.
func SampleOrder(userID int64) *model.Order {
	return &model.Order{
		OrderID:        SampleOrderID,
		UserID:         userID,
		Type:           model.OrderTypePoints,
		Amount:         decimal.RequireFromString("10.00"),
		Currency:       "usdt.trc20",
		ActualAmount:   decimal.RequireFromString("10.01"),
		PaymentAddress: "TAddr",
		Status:         model.OrderStatusPending,
		Points:         100,
		CreatedAt:      time.Unix(0, 0).UTC(),
		ExpireAt:       time.Unix(1800, 0).UTC(),
	}
}

// PurchaseFacadeStub provides controllable behaviour for order endpoints.
type PurchaseFacadeStub struct {
	PackagesFn func() []model.Package
	CreateFn   func(context.Context, int64, string, string) (*model.Order, error)
	OrdersFn   func(context.Context, int64) ([]model.Order, error)
	OrderFn    func(context.Context, int64, string) (*model.Order, error)
	RefreshFn  func(context.Context, int64, string) (*model.Order, error)
}

// Packages returns a one-item catalog unless overridden.
func (s PurchaseFacadeStub) Packages() []model.Package {
	if s.PackagesFn != nil {
		return s.PackagesFn()
	}
	return []model.Package{{Code: "points-100", Type: model.OrderTypePoints, Name: "100 points", Amount: decimal.RequireFromString("10.00"), Points: 100}}
}

// CreateOrder delegates to provided function or returns the sample order.
func (s PurchaseFacadeStub) CreateOrder(ctx context.Context, userID int64, packageCode, currency string) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, userID, packageCode, currency)
	}
	return SampleOrder(userID), nil
}

// Orders returns predefined orders for given user.
func (s PurchaseFacadeStub) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.Order{*SampleOrder(userID)}, nil
}

// Order returns the sample order when ids match.
func (s PurchaseFacadeStub) Order(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, userID, orderID)
	}
	if orderID != SampleOrderID {
		return nil, domainErrors.ErrNotFound
	}
	return SampleOrder(userID), nil
}

// RefreshOrder behaves like Order unless overridden.
func (s PurchaseFacadeStub) RefreshOrder(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	if s.RefreshFn != nil {
		return s.RefreshFn(ctx, userID, orderID)
	}
	return s.Order(ctx, userID, orderID)
}

// AccountFacadeStub simulates account operations.
type AccountFacadeStub struct {
	AccountFn func(context.Context, int64) (*model.Account, error)
	LedgerFn  func(context.Context, int64) ([]model.LedgerEntry, error)
}

// Account returns stored account or default data.
func (s AccountFacadeStub) Account(ctx context.Context, userID int64) (*model.Account, error) {
	if s.AccountFn != nil {
		return s.AccountFn(ctx, userID)
	}
	return &model.Account{UserID: userID, Login: "user", Points: 100, CommissionBalance: decimal.RequireFromString("1.50")}, nil
}

// Ledger returns preconfigured history.
func (s AccountFacadeStub) Ledger(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	if s.LedgerFn != nil {
		return s.LedgerFn(ctx, userID)
	}
	return []model.LedgerEntry{{
		UserID:        userID,
		Type:          model.LedgerTypePointsPurchase,
		Currency:      model.LedgerUnitPoints,
		Amount:        decimal.NewFromInt(100),
		BalanceBefore: decimal.Zero,
		BalanceAfter:  decimal.NewFromInt(100),
		OrderID:       SampleOrderID,
		CreatedAt:     time.Unix(0, 0).UTC(),
	}}, nil
}

// WebhookFacadeStub captures webhook parameters.
type WebhookFacadeStub struct {
	HandleFn func(context.Context, signature.Params) error
}

// HandleWebhook delegates to the override or accepts the call.
func (s WebhookFacadeStub) HandleWebhook(ctx context.Context, params signature.Params) error {
	if s.HandleFn != nil {
		return s.HandleFn(ctx, params)
	}
	return nil
}

// HealthFacadeStub reports a configurable health state.
type HealthFacadeStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthFacadeStub) HealthCheck(context.Context) error {
	return s.Err
}
