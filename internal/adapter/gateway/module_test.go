package gateway

import (
	"io"
	"log/slog"
	"testing"

	"github.com/polkiloo/cryptopay/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{Gateway: config.GatewayConfig{BaseURL: "https://pay.example.com", Secret: "s"}}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	client, err := newClient(clientParams{Config: cfg, Logger: logger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected client instance")
	}
}
