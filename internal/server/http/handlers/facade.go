package handlers

import (
	"context"

	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/pkg/signature"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password, referrer string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// PurchaseFacade encapsulates the package catalog and payment orders.
type PurchaseFacade interface {
	Packages() []model.Package
	CreateOrder(ctx context.Context, userID int64, packageCode, currency string) (*model.Order, error)
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
	Order(ctx context.Context, userID int64, orderID string) (*model.Order, error)
	RefreshOrder(ctx context.Context, userID int64, orderID string) (*model.Order, error)
}

// AccountFacade provides balances and ledger history.
type AccountFacade interface {
	Account(ctx context.Context, userID int64) (*model.Account, error)
	Ledger(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
}

// WebhookFacade accepts gateway payment callbacks.
type WebhookFacade interface {
	HandleWebhook(ctx context.Context, params signature.Params) error
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// PaymentFacade aggregates the full set of operations used across handlers.
type PaymentFacade interface {
	AuthFacade
	PurchaseFacade
	AccountFacade
	WebhookFacade
	HealthFacade
}
