package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/cryptopay/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/server/http/dto"
)

// PurchaseHandler manages the catalog and payment orders.
type PurchaseHandler struct {
	facade PurchaseFacade
}

// NewPurchaseHandler constructs PurchaseHandler.
func NewPurchaseHandler(facade PurchaseFacade) *PurchaseHandler {
	return &PurchaseHandler{facade: facade}
}

// Packages handles GET /api/packages.
func (h *PurchaseHandler) Packages(c *gin.Context) {
	packages := h.facade.Packages()
	resp := make([]dto.PackageResponse, 0, len(packages))
	for _, p := range packages {
		resp = append(resp, dto.PackageResponse{
			Code:    p.Code,
			Type:    string(p.Type),
			Name:    p.Name,
			Amount:  p.Amount,
			Points:  p.Points,
			VIPDays: p.VIPDays,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Create handles POST /api/orders.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Package == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), CurrentUserID(c), req.Package, req.Currency)
	if err != nil {
		c.Status(orderErrorStatus(err))
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// List handles GET /api/orders.
func (h *PurchaseHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	writeList(c, orders, toOrderResponse)
}

// Get handles GET /api/orders/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		c.Status(orderErrorStatus(err))
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Refresh handles POST /api/orders/:id/refresh.
func (h *PurchaseHandler) Refresh(c *gin.Context) {
	order, err := h.facade.RefreshOrder(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		c.Status(orderErrorStatus(err))
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrUnknownPackage), errors.Is(err, domainErrors.ErrUnsupportedCurrency):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, gateway.ErrGatewayRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		OrderID:        order.OrderID,
		Type:           string(order.Type),
		Status:         string(order.Status),
		Amount:         order.Amount,
		Currency:       order.Currency,
		ActualAmount:   order.ActualAmount,
		PaymentAddress: order.PaymentAddress,
		Points:         order.Points,
		VIPDays:        order.VIPDays,
		TxHash:         order.TxHash,
		CreatedAt:      order.CreatedAt,
		ExpireAt:       order.ExpireAt,
		PaidAt:         order.PaidAt,
	}
}
