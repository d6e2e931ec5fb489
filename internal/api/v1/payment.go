package v1

import (
	"net/http"

	"github.com/fleetcore/fleetcore/internal/api/dto"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/service"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *logger.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, logger *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// @Summary Initiate a payment
// @Description Register a payment intent with the gateway for an invoice
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment body dto.InitiatePaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /payments [post]
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.paymentService.InitiatePayment(c.Request.Context(), &req)
	if err != nil {
		h.logger.Errorw("failed to initiate payment", "error", err, "invoice_id", req.InvoiceID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a payment by ID
// @Description Get detailed information about a payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid payment id").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Verify a payment
// @Description Poll the gateway and advance the payment state
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /payments/{id}/verify [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid payment id").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.paymentService.VerifyPayment(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorw("failed to verify payment", "error", err, "payment_id", id)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
