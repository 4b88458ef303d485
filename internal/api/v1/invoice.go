package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/service"
	"github.com/hirelane/billing/internal/types"
)

type InvoiceHandler struct {
	service service.InvoiceService
	log     *logger.Logger
}

func NewInvoiceHandler(service service.InvoiceService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		service: service,
		log:     log,
	}
}

// @Summary Get invoice
// @Description Get an invoice by ID
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invoice ID is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List invoices
// @Description List invoices for the calling tenant
// @Tags Invoices
// @Accept json
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var filter types.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Pay invoice
// @Description Initiate payment for an unpaid invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.PayInvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /invoices/{id}/pay [post]
func (h *InvoiceHandler) PayInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invoice ID is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.PayInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
