package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hirelane/billing/internal/api/dto"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/service"
	"github.com/hirelane/billing/internal/types"
)

type SubscriptionHandler struct {
	service       service.SubscriptionService
	creditService service.CreditService
	log           *logger.Logger
}

func NewSubscriptionHandler(
	service service.SubscriptionService,
	creditService service.CreditService,
	log *logger.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		service:       service,
		creditService: creditService,
		log:           log,
	}
}

// @Summary Create subscription
// @Description Sign the tenant up for a plan
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param subscription body dto.CreateSubscriptionRequest true "Subscription request"
// @Success 201 {object} dto.SubscriptionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /subscriptions [post]
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateSubscription(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get subscription
// @Description Get a subscription with its current credit balance
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("subscription ID is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetSubscription(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel subscription
// @Description Cancel a subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("subscription ID is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CancelSubscription(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Consume credits
// @Description Deduct credits from the subscription ledger
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param request body dto.ConsumeCreditsRequest true "Consumption request"
// @Success 200 {object} dto.ConsumeCreditsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/consume [post]
func (h *SubscriptionHandler) ConsumeCredits(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("subscription ID is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.ConsumeCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.creditService.ConsumeCredits(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List credit usage
// @Description List consumption entries for a subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} creditusage.CreditUsage
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/usage [get]
func (h *SubscriptionHandler) ListCreditUsage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("subscription ID is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var filter types.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	usages, err := h.creditService.ListCreditUsage(c.Request.Context(), id, filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, usages)
}
