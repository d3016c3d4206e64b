package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/cryptopay/internal/config"
	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/pkg/signature"
)

const maxLoggedBody = 512

var errEndpointUnsupported = errors.New("gateway endpoint unsupported")

// CreateOrderRequest describes an order to be placed at the gateway.
type CreateOrderRequest struct {
	OrderID        string
	Amount         decimal.Decimal
	Currency       string
	NotifyURL      string
	RedirectURL    string
	DisplayName    string
	TimeoutSeconds int
}

// Client exposes the payment gateway operations.
type Client interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.RemoteOrder, error)
	QueryOrder(ctx context.Context, orderID string) (*model.RemoteState, error)
}

// HTTPClient implements Client over the gateway's signed JSON API.
type HTTPClient struct {
	http       *resty.Client
	secret     string
	createPath string
	queryPath  string
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type createData struct {
	Address        string          `json:"address"`
	Token          string          `json:"token"`
	ActualAmount   decimal.Decimal `json:"actual_amount"`
	ExpirationTime *int64          `json:"expiration_time"`
}

type queryData struct {
	Status      model.GatewayStatus `json:"status"`
	TxHash      string              `json:"tx_hash"`
	BlockNumber int64               `json:"block_number"`
}

// NewHTTPClient creates gateway client for the configured base URL.
func NewHTTPClient(cfg config.GatewayConfig, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(parsed.String()).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPClient{
		http:       client,
		secret:     cfg.Secret,
		createPath: cfg.CreatePath,
		queryPath:  cfg.QueryPath,
		timeout:    timeout,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// CreateOrder places a signed order and returns the payment instructions.
func (c *HTTPClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.RemoteOrder, error) {
	amount := req.Amount.StringFixed(2)
	params := signature.Params{
		"order_id":   req.OrderID,
		"amount":     amount,
		"trade_type": req.Currency,
	}
	body := map[string]interface{}{
		"order_id":   req.OrderID,
		"amount":     json.Number(amount),
		"trade_type": req.Currency,
	}
	optional := map[string]string{
		"name":         req.DisplayName,
		"notify_url":   req.NotifyURL,
		"redirect_url": req.RedirectURL,
	}
	for key, value := range optional {
		if value == "" {
			continue
		}
		params[key] = value
		body[key] = value
	}
	if req.TimeoutSeconds > 0 {
		params["timeout"] = strconv.Itoa(req.TimeoutSeconds)
		body["timeout"] = req.TimeoutSeconds
	}
	body[signature.Key] = signature.Sign(params, c.secret)

	env, err := c.post(ctx, c.createPath, body, false)
	if err != nil {
		return nil, err
	}

	var data createData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, &UnavailableError{Err: fmt.Errorf("decode create response: %w", err)}
		}
	}
	address := data.Address
	if address == "" {
		address = data.Token
	}
	if address == "" {
		return nil, &RejectedError{Code: env.StatusCode, Message: "missing payment address"}
	}

	expireAt := c.now().Add(c.timeout)
	if req.TimeoutSeconds > 0 {
		expireAt = c.now().Add(time.Duration(req.TimeoutSeconds) * time.Second)
	}
	if data.ExpirationTime != nil && *data.ExpirationTime > 0 {
		expireAt = time.Unix(*data.ExpirationTime, 0)
	}
	actual := data.ActualAmount
	if actual.IsZero() {
		actual = req.Amount
	}

	return &model.RemoteOrder{
		PaymentAddress: address,
		ActualAmount:   actual,
		ExpireAt:       expireAt.UTC(),
	}, nil
}

// QueryOrder asks the gateway for the current order state.
func (c *HTTPClient) QueryOrder(ctx context.Context, orderID string) (*model.RemoteState, error) {
	if c.queryPath == "" {
		return &model.RemoteState{Status: model.RemoteStatusUnsupported}, nil
	}
	params := signature.Params{"order_id": orderID}
	body := map[string]interface{}{
		"order_id":    orderID,
		signature.Key: signature.Sign(params, c.secret),
	}

	env, err := c.post(ctx, c.queryPath, body, true)
	if errors.Is(err, errEndpointUnsupported) {
		return &model.RemoteState{Status: model.RemoteStatusUnsupported}, nil
	}
	if err != nil {
		return nil, err
	}

	var data queryData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &UnavailableError{Err: fmt.Errorf("decode query response: %w", err)}
	}

	state := &model.RemoteState{TxHash: data.TxHash, BlockNumber: data.BlockNumber}
	switch data.Status {
	case model.GatewayStatusPaid:
		state.Status = model.RemoteStatusPaid
	case model.GatewayStatusExpired:
		state.Status = model.RemoteStatusExpired
	default:
		state.Status = model.RemoteStatusPending
	}
	return state, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body map[string]interface{}, optional bool) (*envelope, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}

	status := resp.StatusCode()
	if optional && unsupportedStatus(status) {
		return nil, errEndpointUnsupported
	}
	switch {
	case status >= http.StatusInternalServerError:
		c.logger.Error("gateway request failed",
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("body", truncate(resp.Body())))
		return nil, &UnavailableError{Err: fmt.Errorf("http status %d", status)}
	case status >= http.StatusBadRequest:
		return nil, &RejectedError{Code: status, Message: truncate(resp.Body())}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, &UnavailableError{Err: fmt.Errorf("decode gateway response: %w", err)}
	}
	if env.StatusCode != http.StatusOK {
		c.logger.Warn("gateway refused request",
			slog.String("path", path),
			slog.Int("status_code", env.StatusCode),
			slog.String("message", env.Message))
		return nil, &RejectedError{Code: env.StatusCode, Message: env.Message}
	}
	return &env, nil
}

func unsupportedStatus(code int) bool {
	return code == http.StatusNotFound || code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody])
	}
	return string(body)
}
