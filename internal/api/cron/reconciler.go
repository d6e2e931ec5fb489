package cron

import (
	"net/http"
	"time"

	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/service"
	"github.com/gin-gonic/gin"
)

// ReconcilerHandler exposes the nightly reconciliation as an HTTP trigger so
// an external scheduler can drive it; the in-process cron uses the same
// service. The cron auth middleware guards the route.
type ReconcilerHandler struct {
	reconcilerService service.ReconcilerService
	logger            *logger.Logger
}

func NewReconcilerHandler(reconcilerService service.ReconcilerService, logger *logger.Logger) *ReconcilerHandler {
	return &ReconcilerHandler{
		reconcilerService: reconcilerService,
		logger:            logger,
	}
}

// @Summary Run subscription reconciliation
// @Description Sweeps expired subscriptions and aged overdue invoices across
// @Description all tenants. At most one run at a time; a concurrent trigger
// @Description fails instead of queueing.
// @Tags Cron
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ReconcilerRunResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /cron/reconcile [post]
func (h *ReconcilerHandler) Run(c *gin.Context) {
	now := time.Now().UTC()
	h.logger.Infow("reconciliation triggered over http", "time", now.Format(time.RFC3339))

	resp, err := h.reconcilerService.Run(c.Request.Context(), now)
	if err != nil {
		h.logger.Errorw("reconciliation run failed", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("reconciliation run finished",
		"total_suspended", resp.TotalSuspended,
		"expired_subscriptions", resp.ExpiredSubscriptions,
		"overdue_invoices", resp.OverdueInvoices,
		"errors", len(resp.Errors),
	)

	c.JSON(http.StatusOK, resp)
}
