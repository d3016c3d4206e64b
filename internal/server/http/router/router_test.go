package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/cryptopay/internal/config"
	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/pkg/signature"
	"github.com/polkiloo/cryptopay/internal/server/http/handlers"
	testhelpers "github.com/polkiloo/cryptopay/internal/test"
)

func TestSetupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	var webhookCalled bool
	facade := testhelpers.PaymentFacadeStub{
		PurchaseFacadeStub: testhelpers.PurchaseFacadeStub{
			OrdersFn: func(_ context.Context, userID int64) ([]model.Order, error) {
				return []model.Order{*testhelpers.SampleOrder(userID)}, nil
			},
		},
		WebhookFacadeStub: testhelpers.WebhookFacadeStub{
			HandleFn: func(context.Context, signature.Params) error {
				webhookCalled = true
				return nil
			},
		},
	}
	engine := Setup(facade, logger)

	body, _ := json.Marshal(map[string]string{"login": "user", "password": "pass"})
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for register, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for orders, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders/"+testhelpers.SampleOrderID, nil)
	req.Header.Set("Authorization", "Bearer token")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for order, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader([]byte(`{"order_id":"x","status":2}`)))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !webhookCalled {
		t.Fatalf("expected webhook to be accepted without auth, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for healthz, got %d", resp.Code)
	}
}

var _ handlers.PaymentFacade = testhelpers.PaymentFacadeStub{}

func TestNewEngineSelectsMode(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	newEngine(engineParams{Facade: testhelpers.PaymentFacadeStub{}, Config: &config.Config{LogLevel: "debug"}, Logger: logger})
	if gin.Mode() != gin.DebugMode {
		t.Fatalf("expected debug mode, got %s", gin.Mode())
	}
	if engine := newEngine(engineParams{Facade: testhelpers.PaymentFacadeStub{}, Config: &config.Config{LogLevel: "info"}, Logger: logger}); engine == nil {
		t.Fatal("expected engine")
	}
	if gin.Mode() != gin.ReleaseMode {
		t.Fatalf("expected release mode, got %s", gin.Mode())
	}
}
