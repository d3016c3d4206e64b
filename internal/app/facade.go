package app

import (
	"context"
	"time"

	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/pkg/signature"
	"github.com/polkiloo/cryptopay/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// PaymentFacade is the single entry point the HTTP layer and the background
// workers talk to.
type PaymentFacade struct {
	auth      *usecase.AuthUseCase
	purchases *usecase.PurchaseUseCase
	accounts  *usecase.AccountUseCase
	webhooks  *usecase.WebhookUseCase
	reconcile *usecase.ReconciliationUseCase
	health    HealthChecker
}

func NewPaymentFacade(
	auth *usecase.AuthUseCase,
	purchases *usecase.PurchaseUseCase,
	accounts *usecase.AccountUseCase,
	webhooks *usecase.WebhookUseCase,
	reconcile *usecase.ReconciliationUseCase,
	health HealthChecker,
) *PaymentFacade {
	return &PaymentFacade{
		auth:      auth,
		purchases: purchases,
		accounts:  accounts,
		webhooks:  webhooks,
		reconcile: reconcile,
		health:    health,
	}
}

func (f *PaymentFacade) Register(ctx context.Context, login, password, referrer string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password, referrer)
	return token, err
}

func (f *PaymentFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *PaymentFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *PaymentFacade) Packages() []model.Package {
	return f.purchases.Packages()
}

func (f *PaymentFacade) CreateOrder(ctx context.Context, userID int64, packageCode, currency string) (*model.Order, error) {
	return f.purchases.CreateOrder(ctx, userID, packageCode, currency)
}

func (f *PaymentFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.purchases.Orders(ctx, userID)
}

func (f *PaymentFacade) Order(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	return f.purchases.Order(ctx, userID, orderID)
}

func (f *PaymentFacade) RefreshOrder(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	return f.purchases.RefreshStatus(ctx, userID, orderID)
}

func (f *PaymentFacade) Account(ctx context.Context, userID int64) (*model.Account, error) {
	return f.accounts.Account(ctx, userID)
}

func (f *PaymentFacade) Ledger(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	return f.accounts.Ledger(ctx, userID)
}

// HandleWebhook verifies and settles a gateway callback. Duplicate, late and
// non-final notifications are acknowledged like successful ones.
func (f *PaymentFacade) HandleWebhook(ctx context.Context, params signature.Params) error {
	_, err := f.webhooks.Process(ctx, params)
	return err
}

func (f *PaymentFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

func (f *PaymentFacade) ExpireStale(ctx context.Context, now time.Time) ([]string, error) {
	return f.reconcile.ExpireStale(ctx, now)
}

func (f *PaymentFacade) PendingFulfillment(ctx context.Context, limit int) ([]model.Order, error) {
	return f.reconcile.PendingFulfillment(ctx, limit)
}

func (f *PaymentFacade) Complete(ctx context.Context, order model.Order) error {
	return f.reconcile.Complete(ctx, order)
}
