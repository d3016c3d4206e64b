package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/cryptopay/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/domain/repository"
)

// PaymentGateway places and inspects orders at the crypto payment gateway.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*model.RemoteOrder, error)
	QueryOrder(ctx context.Context, orderID string) (*model.RemoteState, error)
}

// PurchaseOptions configures the catalog and the gateway order defaults.
type PurchaseOptions struct {
	Packages    []model.Package
	Currencies  []string
	NotifyURL   string
	RedirectURL string
	OrderTTL    time.Duration
}

// PurchaseUseCase creates payment orders for catalog packages.
type PurchaseUseCase struct {
	orders   repository.OrderRepository
	gateway  PaymentGateway
	settler  Settler
	opts     PurchaseOptions
	packages map[string]model.Package
	logger   *slog.Logger
	newID    func() string
}

// NewPurchaseUseCase constructs PurchaseUseCase.
func NewPurchaseUseCase(orders repository.OrderRepository, gw PaymentGateway, settler Settler, opts PurchaseOptions, logger *slog.Logger) *PurchaseUseCase {
	packages := make(map[string]model.Package, len(opts.Packages))
	for _, p := range opts.Packages {
		packages[p.Code] = p
	}
	return &PurchaseUseCase{
		orders:   orders,
		gateway:  gw,
		settler:  settler,
		opts:     opts,
		packages: packages,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Packages returns the purchasable catalog.
func (u *PurchaseUseCase) Packages() []model.Package {
	return append([]model.Package(nil), u.opts.Packages...)
}

// CreateOrder places a gateway order for packageCode payable in currency and
// stores it as pending. Nothing is stored when the gateway call fails.
func (u *PurchaseUseCase) CreateOrder(ctx context.Context, userID int64, packageCode, currency string) (*model.Order, error) {
	pkg, ok := u.packages[strings.TrimSpace(packageCode)]
	if !ok {
		return nil, domainErrors.ErrUnknownPackage
	}

	currency = strings.ToLower(strings.TrimSpace(currency))
	if !u.supports(currency) {
		return nil, domainErrors.ErrUnsupportedCurrency
	}

	orderID := u.newID()
	remote, err := u.gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
		OrderID:        orderID,
		Amount:         pkg.Amount,
		Currency:       currency,
		NotifyURL:      u.opts.NotifyURL,
		RedirectURL:    u.opts.RedirectURL,
		DisplayName:    pkg.Name,
		TimeoutSeconds: int(u.opts.OrderTTL / time.Second),
	})
	if err != nil {
		u.logger.Error("gateway order creation failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	order := &model.Order{
		OrderID:        orderID,
		UserID:         userID,
		Type:           pkg.Type,
		Amount:         pkg.Amount,
		Currency:       currency,
		ActualAmount:   remote.ActualAmount,
		PaymentAddress: remote.PaymentAddress,
		Status:         model.OrderStatusPending,
		Points:         pkg.Points,
		VIPDays:        pkg.VIPDays,
		ExpireAt:       remote.ExpireAt,
	}
	if pkg.Type == model.OrderTypeVIP {
		order.VIPPackageName = pkg.Name
	}

	if err := u.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	u.logger.Info("order created",
		slog.String("order_id", orderID),
		slog.Int64("user_id", userID),
		slog.String("package", pkg.Code),
		slog.String("currency", currency),
	)
	return order, nil
}

// Orders lists orders of userID, newest first.
func (u *PurchaseUseCase) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// Order returns one order owned by userID. Orders of other users are
// reported as missing.
func (u *PurchaseUseCase) Order(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	if !ValidOrderID(orderID) {
		return nil, domainErrors.ErrNotFound
	}
	order, err := u.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

// RefreshStatus asks the gateway about a pending order and settles it when
// the gateway reports it paid. Any other answer leaves the order untouched.
func (u *PurchaseUseCase) RefreshStatus(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
	order, err := u.Order(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return order, nil
	}

	state, err := u.gateway.QueryOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("query gateway order: %w", err)
	}
	if state.Status != model.RemoteStatusPaid {
		return order, nil
	}

	_, err = u.settler.Settle(ctx, model.PaymentNotification{
		OrderID:     orderID,
		Status:      model.GatewayStatusPaid,
		TxHash:      state.TxHash,
		BlockNumber: state.BlockNumber,
	})
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		u.logger.Error("refresh settlement failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}
	return u.orders.GetByOrderID(ctx, orderID)
}

func (u *PurchaseUseCase) supports(currency string) bool {
	if currency == "" {
		return false
	}
	for _, c := range u.opts.Currencies {
		if strings.EqualFold(c, currency) {
			return true
		}
	}
	return false
}
