package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/cryptopay/internal/adapter/gateway"
	"github.com/polkiloo/cryptopay/internal/config"
	"github.com/polkiloo/cryptopay/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		NewAuthUseCase,
		NewAccountUseCase,
		newCommissionUseCase,
		newFulfillmentUseCase,
		newPaymentUseCase,
		newWebhookUseCase,
		newPurchaseUseCase,
		newReconciliationUseCase,
	),
)

type commissionParams struct {
	fx.In

	Commissions repository.CommissionRepository
	Config      *config.Config
	Logger      *slog.Logger
}

func newCommissionUseCase(p commissionParams) *CommissionUseCase {
	return NewCommissionUseCase(p.Commissions, p.Config.CommissionRates, p.Config.FiatUnit, p.Logger)
}

func newFulfillmentUseCase(accounts repository.AccountRepository, commissions *CommissionUseCase, logger *slog.Logger) *FulfillmentUseCase {
	return NewFulfillmentUseCase(accounts, commissions, logger)
}

func newPaymentUseCase(orders repository.OrderRepository, fulfillment *FulfillmentUseCase, logger *slog.Logger) *PaymentUseCase {
	return NewPaymentUseCase(orders, fulfillment, logger)
}

func newWebhookUseCase(cfg *config.Config, payments *PaymentUseCase, logger *slog.Logger) *WebhookUseCase {
	return NewWebhookUseCase(cfg.Gateway.Secret, payments, logger)
}

type purchaseParams struct {
	fx.In

	Orders   repository.OrderRepository
	Gateway  gateway.Client
	Payments *PaymentUseCase
	Config   *config.Config
	Logger   *slog.Logger
}

func newPurchaseUseCase(p purchaseParams) *PurchaseUseCase {
	return NewPurchaseUseCase(p.Orders, p.Gateway, p.Payments, newPurchaseOptions(p.Config), p.Logger)
}

func newPurchaseOptions(cfg *config.Config) PurchaseOptions {
	return PurchaseOptions{
		Packages:    cfg.Packages,
		Currencies:  cfg.Gateway.Currencies,
		NotifyURL:   cfg.Gateway.NotifyURL,
		RedirectURL: cfg.Gateway.RedirectURL,
		OrderTTL:    cfg.Gateway.OrderTTL,
	}
}

func newReconciliationUseCase(orders repository.OrderRepository, fulfillment *FulfillmentUseCase, logger *slog.Logger) *ReconciliationUseCase {
	return NewReconciliationUseCase(orders, fulfillment, logger)
}
