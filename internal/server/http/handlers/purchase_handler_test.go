package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/polkiloo/cryptopay/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/server/http/dto"
	testhelpers "github.com/polkiloo/cryptopay/internal/test"
)

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func TestPurchaseHandlerPackages(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/packages", NewPurchaseHandler(testhelpers.PurchaseFacadeStub{}).Packages, withUser(1), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var packages []dto.PackageResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &packages); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(packages) != 1 || packages[0].Code != "points-100" || packages[0].Amount.String() != "10" {
		t.Fatalf("unexpected packages %+v", packages)
	}
}

func TestPurchaseHandlerCreate(t *testing.T) {
	var gotUser int64
	var gotPackage, gotCurrency string
	facade := testhelpers.PurchaseFacadeStub{CreateFn: func(_ context.Context, userID int64, pkg, currency string) (*model.Order, error) {
		gotUser, gotPackage, gotCurrency = userID, pkg, currency
		return testhelpers.SampleOrder(userID), nil
	}}

	body, _ := json.Marshal(dto.CreateOrderRequest{Package: "points-100", Currency: "trx"})
	resp := performRequest(t, http.MethodPost, "/orders", NewPurchaseHandler(facade).Create, withUser(7), body, jsonHeaders)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	if gotUser != 7 || gotPackage != "points-100" || gotCurrency != "trx" {
		t.Fatalf("unexpected facade arguments %d %q %q", gotUser, gotPackage, gotCurrency)
	}

	var order dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if order.OrderID != testhelpers.SampleOrderID || order.PaymentAddress != "TAddr" || order.Status != "pending" {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestPurchaseHandlerCreateFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   []byte
		err    error
		status int
	}{
		{name: "bad json", body: []byte("nope"), status: http.StatusBadRequest},
		{name: "missing package", body: []byte(`{"currency":"trx"}`), status: http.StatusBadRequest},
		{name: "unknown package", body: []byte(`{"package":"x","currency":"trx"}`), err: domainErrors.ErrUnknownPackage, status: http.StatusUnprocessableEntity},
		{name: "unsupported currency", body: []byte(`{"package":"x","currency":"btc"}`), err: domainErrors.ErrUnsupportedCurrency, status: http.StatusUnprocessableEntity},
		{name: "gateway unavailable", body: []byte(`{"package":"x","currency":"trx"}`), err: &gateway.UnavailableError{Err: errors.New("timeout")}, status: http.StatusServiceUnavailable},
		{name: "gateway rejected", body: []byte(`{"package":"x","currency":"trx"}`), err: &gateway.RejectedError{Code: 1001}, status: http.StatusBadGateway},
		{name: "internal", body: []byte(`{"package":"x","currency":"trx"}`), err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := testhelpers.PurchaseFacadeStub{CreateFn: func(context.Context, int64, string, string) (*model.Order, error) {
				if tt.err == nil {
					t.Fatal("facade must not be called")
				}
				return nil, tt.err
			}}
			resp := performRequest(t, http.MethodPost, "/orders", NewPurchaseHandler(facade).Create, withUser(1), tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestPurchaseHandlerList(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/orders", NewPurchaseHandler(testhelpers.PurchaseFacadeStub{}).List, withUser(1), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	empty := testhelpers.PurchaseFacadeStub{OrdersFn: func(context.Context, int64) ([]model.Order, error) { return nil, nil }}
	resp = performRequest(t, http.MethodGet, "/orders", NewPurchaseHandler(empty).List, withUser(1), nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}

	failing := testhelpers.PurchaseFacadeStub{OrdersFn: func(context.Context, int64) ([]model.Order, error) { return nil, errors.New("boom") }}
	resp = performRequest(t, http.MethodGet, "/orders", NewPurchaseHandler(failing).List, withUser(1), nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestPurchaseHandlerGet(t *testing.T) {
	handler := NewPurchaseHandler(testhelpers.PurchaseFacadeStub{})

	resp := performRoute(t, http.MethodGet, "/orders/:id", "/orders/"+testhelpers.SampleOrderID, handler.Get, withUser(1), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	resp = performRoute(t, http.MethodGet, "/orders/:id", "/orders/other", handler.Get, withUser(1), nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestPurchaseHandlerRefresh(t *testing.T) {
	var gotID string
	facade := testhelpers.PurchaseFacadeStub{RefreshFn: func(_ context.Context, userID int64, orderID string) (*model.Order, error) {
		gotID = orderID
		order := testhelpers.SampleOrder(userID)
		order.Status = model.OrderStatusPaid
		return order, nil
	}}
	resp := performRoute(t, http.MethodPost, "/orders/:id/refresh", "/orders/"+testhelpers.SampleOrderID+"/refresh", NewPurchaseHandler(facade).Refresh, withUser(1), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotID != testhelpers.SampleOrderID {
		t.Fatalf("unexpected order id %q", gotID)
	}

	unavailable := testhelpers.PurchaseFacadeStub{RefreshFn: func(context.Context, int64, string) (*model.Order, error) {
		return nil, &gateway.UnavailableError{Err: errors.New("down")}
	}}
	resp = performRoute(t, http.MethodPost, "/orders/:id/refresh", "/orders/x/refresh", NewPurchaseHandler(unavailable).Refresh, withUser(1), nil, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}
