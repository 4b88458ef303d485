package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hirelane/billing/internal/api/dto"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/service"
)

type ReferralHandler struct {
	service service.ReferralService
	log     *logger.Logger
}

func NewReferralHandler(service service.ReferralService, log *logger.Logger) *ReferralHandler {
	return &ReferralHandler{
		service: service,
		log:     log,
	}
}

// @Summary Create referral
// @Description Record that the calling tenant was referred by another subscription
// @Tags Referrals
// @Accept json
// @Produce json
// @Param referral body dto.CreateReferralRequest true "Referral request"
// @Success 201 {object} dto.ReferralResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /referrals [post]
func (h *ReferralHandler) CreateReferral(c *gin.Context) {
	var req dto.CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateReferral(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get referral
// @Description Get a referral by ID
// @Tags Referrals
// @Accept json
// @Produce json
// @Param id path string true "Referral ID"
// @Success 200 {object} dto.ReferralResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /referrals/{id} [get]
func (h *ReferralHandler) GetReferral(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("referral ID is required").
			WithHint("Referral ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetReferral(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
