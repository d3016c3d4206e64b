package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/domain/model"
	"github.com/polkiloo/cryptopay/internal/server/http/dto"
)

// AccountHandler serves balances and ledger history.
type AccountHandler struct {
	facade AccountFacade
	now    func() time.Time
}

// NewAccountHandler constructs AccountHandler.
func NewAccountHandler(facade AccountFacade) *AccountHandler {
	return &AccountHandler{facade: facade, now: time.Now}
}

// Account handles GET /api/user/account.
func (h *AccountHandler) Account(c *gin.Context) {
	account, err := h.facade.Account(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, dto.AccountResponse{
		Login:             account.Login,
		Points:            account.Points,
		VIPActive:         account.VIPExpireAt != nil && account.VIPExpireAt.After(h.now()),
		VIPExpireAt:       account.VIPExpireAt,
		CommissionBalance: account.CommissionBalance,
	})
}

// Ledger handles GET /api/user/ledger.
func (h *AccountHandler) Ledger(c *gin.Context) {
	entries, err := h.facade.Ledger(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	writeList(c, entries, toLedgerEntryResponse)
}

func toLedgerEntryResponse(e model.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		Type:          string(e.Type),
		Currency:      e.Currency,
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		OrderID:       e.OrderID,
		Description:   e.Description,
		CreatedAt:     e.CreatedAt,
	}
}
