package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/cryptopay/internal/domain/errors"
	"github.com/polkiloo/cryptopay/internal/pkg/signature"
)

const (
	webhookOK         = "ok"
	webhookFail       = "fail"
	maxWebhookBodyLen = 1 << 20
)

// WebhookHandler receives gateway payment notifications.
type WebhookHandler struct {
	facade WebhookFacade
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade) *WebhookHandler {
	return &WebhookHandler{facade: facade}
}

// Notify handles POST /api/payments/webhook. The gateway retries until it
// reads the literal body "ok".
func (h *WebhookHandler) Notify(c *gin.Context) {
	params, err := readWebhookParams(c)
	if err != nil {
		c.String(http.StatusBadRequest, webhookFail)
		return
	}

	if err := h.facade.HandleWebhook(c.Request.Context(), params); err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidSignature):
			c.String(http.StatusUnauthorized, webhookFail)
		case errors.Is(err, domainErrors.ErrInvalidPayload):
			c.String(http.StatusBadRequest, webhookFail)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.String(http.StatusNotFound, webhookFail)
		default:
			c.String(http.StatusInternalServerError, webhookFail)
		}
		return
	}

	c.String(http.StatusOK, webhookOK)
}

func readWebhookParams(c *gin.Context) (signature.Params, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyLen)

	switch c.ContentType() {
	case gin.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		return signature.ParamsFromValues(c.Request.PostForm), nil
	default:
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		return signature.ParamsFromJSON(body)
	}
}
