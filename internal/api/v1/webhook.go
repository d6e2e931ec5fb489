package v1

import (
	"net/http"

	"github.com/fleetcore/fleetcore/internal/api/dto"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/service"
	"github.com/gin-gonic/gin"
)

// WebhookHandler receives the gateway's server-to-server callbacks. It is
// mounted outside the tenant-scoped group; the reference establishes scope.
type WebhookHandler struct {
	paymentService service.PaymentService
	logger         *logger.Logger
}

func NewWebhookHandler(paymentService service.PaymentService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// @Summary Gateway payment callback
// @Description Re-verifies the referenced payment against the gateway. The
// @Description posted status is never trusted directly.
// @Tags Webhooks
// @Accept x-www-form-urlencoded
// @Accept json
// @Produce json
// @Param reference formData string true "Invoice number the gateway echoes back"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /webhooks/paynow [post]
func (h *WebhookHandler) HandlePaynow(c *gin.Context) {
	var req dto.PaymentWebhookRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Errorw("failed to bind webhook payload", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid webhook payload").Mark(ierr.ErrValidation))
		return
	}

	h.logger.Infow("gateway webhook received",
		"reference", req.Reference,
		"reported_status", req.Status,
	)

	resp, err := h.paymentService.VerifyByReference(c.Request.Context(), req.Reference)
	if err != nil {
		h.logger.Errorw("webhook verification failed", "error", err, "reference", req.Reference)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
