package usecase

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/pkg/signature"
	testhelpers "github.com/polkiloo/cryptopay/internal/test"
)

const (
	testSecret  = "gateway-secret"
	testOrderID = "0b7e3d52-4f0a-4c86-9d0e-5a2f3b1c9e11"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type notifierStub struct {
	calls int
	err   error
}

func (n *notifierStub) OnOrderFulfilled(context.Context, int64, decimal.Decimal, model.OrderType, string) error {
	n.calls++
	return n.err
}

// pipeline wires the payment path over one in-memory store.
type pipeline struct {
	store       *testhelpers.MemoryStore
	commission  *CommissionUseCase
	fulfillment *FulfillmentUseCase
	payments    *PaymentUseCase
	webhook     *WebhookUseCase
}

func newPipeline(rates ...string) *pipeline {
	store := testhelpers.NewMemoryStore()
	logger := discardLogger()

	parsed := make([]decimal.Decimal, 0, len(rates))
	for _, r := range rates {
		parsed = append(parsed, decimal.RequireFromString(r))
	}

	commission := NewCommissionUseCase(store.Commissions(), parsed, "USD", logger)
	fulfillment := NewFulfillmentUseCase(store.Accounts(), commission, logger)
	payments := NewPaymentUseCase(store.Orders(), fulfillment, logger)
	return &pipeline{
		store:       store,
		commission:  commission,
		fulfillment: fulfillment,
		payments:    payments,
		webhook:     NewWebhookUseCase(testSecret, payments, logger),
	}
}

func pendingPointsOrder(userID int64, points int64, amount string) model.Order {
	return model.Order{
		OrderID:        testOrderID,
		UserID:         userID,
		Type:           model.OrderTypePoints,
		Amount:         decimal.RequireFromString(amount),
		Currency:       "usdt.trc20",
		ActualAmount:   decimal.RequireFromString(amount),
		PaymentAddress: "TAddr",
		Status:         model.OrderStatusPending,
		Points:         points,
		ExpireAt:       time.Now().Add(time.Hour),
	}
}

func signedParams(orderID string, status int) signature.Params {
	params := signature.Params{
		"order_id":      orderID,
		"status":        strconv.Itoa(status),
		"tx_hash":       "0xabc",
		"block_number":  "1024",
		"amount":        "10.50",
		"actual_amount": "10.51",
	}
	params[signature.Key] = signature.Sign(params, testSecret)
	return params
}
