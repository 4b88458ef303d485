package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/gateway"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/service"
)

type WebhookHandler struct {
	service service.InvoiceService
	gateway gateway.PaymentGateway
	log     *logger.Logger
}

func NewWebhookHandler(
	service service.InvoiceService,
	gateway gateway.PaymentGateway,
	log *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		gateway: gateway,
		log:     log,
	}
}

// @Summary Stripe webhook
// @Description Receive payment notifications from Stripe
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} ierr.ErrorResponse
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to read webhook payload").
			Mark(ierr.ErrValidation))
		return
	}

	event, err := h.gateway.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.HandleWebhookEvent(c.Request.Context(), event); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": "true"})
}
