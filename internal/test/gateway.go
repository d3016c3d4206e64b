package test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/cryptopay/internal/adapter/gateway"
	"github.com/polkiloo/cryptopay/internal/domain/model"
)

// GatewayStub records gateway calls and answers through overrides.
type GatewayStub struct {
	CreateFn func(context.Context, gateway.CreateOrderRequest) (*model.RemoteOrder, error)
	QueryFn  func(context.Context, string) (*model.RemoteState, error)

	Requests []gateway.CreateOrderRequest
}

// CreateOrder returns a fixed payment address unless overridden.
func (s *GatewayStub) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*model.RemoteOrder, error) {
	s.Requests = append(s.Requests, req)
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return &model.RemoteOrder{
		PaymentAddress: "TAddr-" + req.OrderID,
		ActualAmount:   req.Amount.Add(decimal.RequireFromString("0.01")),
		ExpireAt:       time.Now().Add(time.Duration(req.TimeoutSeconds) * time.Second),
	}, nil
}

// QueryOrder reports the order as pending unless overridden.
func (s *GatewayStub) QueryOrder(ctx context.Context, orderID string) (*model.RemoteState, error) {
	if s.QueryFn != nil {
		return s.QueryFn(ctx, orderID)
	}
	return &model.RemoteState{Status: model.RemoteStatusPending}, nil
}

var _ gateway.Client = (*GatewayStub)(nil)
