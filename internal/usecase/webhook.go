package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/pkg/signature"
)

// Settler applies a payment confirmation to the order store.
type Settler interface {
	Settle(ctx context.Context, n model.PaymentNotification) (SettleResult, error)
}

// WebhookUseCase authenticates gateway callbacks and settles payments.
type WebhookUseCase struct {
	secret  string
	settler Settler
	logger  *slog.Logger
}

// NewWebhookUseCase constructs WebhookUseCase.
func NewWebhookUseCase(secret string, settler Settler, logger *slog.Logger) *WebhookUseCase {
	return &WebhookUseCase{secret: secret, settler: settler, logger: logger}
}

// Process handles one delivery. Redelivery of an already settled payment
// is acknowledged without side effects.
func (u *WebhookUseCase) Process(ctx context.Context, params signature.Params) (SettleResult, error) {
	if !signature.VerifyParams(params, u.secret) {
		u.logger.Warn("webhook signature mismatch", slog.String("order_id", params["order_id"]))
		return "", domainErrors.ErrInvalidSignature
	}

	n, err := ParseNotification(params)
	if err != nil {
		return "", err
	}

	if n.Status != model.GatewayStatusPaid {
		u.logger.Debug("webhook status ignored",
			slog.String("order_id", n.OrderID),
			slog.Int("status", int(n.Status)),
		)
		return SettleIgnored, nil
	}

	if n.OrderID == "" {
		u.logger.Error("webhook without order id")
		return "", domainErrors.ErrNotFound
	}

	result, err := u.settler.Settle(ctx, n)
	if err != nil {
		u.logger.Error("webhook settlement failed",
			slog.String("order_id", n.OrderID),
			slog.String("error", err.Error()),
		)
		return result, err
	}
	return result, nil
}

// ParseNotification extracts the fields the service acts upon.
func ParseNotification(params signature.Params) (model.PaymentNotification, error) {
	n := model.PaymentNotification{
		OrderID: strings.TrimSpace(params["order_id"]),
		TxHash:  params["tx_hash"],
	}

	status, err := strconv.Atoi(strings.TrimSpace(params["status"]))
	if err != nil {
		return n, fmt.Errorf("%w: status %q", domainErrors.ErrInvalidPayload, params["status"])
	}
	n.Status = model.GatewayStatus(status)

	if raw := strings.TrimSpace(params["block_number"]); raw != "" {
		block, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return n, fmt.Errorf("%w: block_number %q", domainErrors.ErrInvalidPayload, raw)
		}
		n.BlockNumber = block
	}
	return n, nil
}
