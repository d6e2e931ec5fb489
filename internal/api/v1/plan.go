package v1

import (
	"net/http"

	"github.com/fleetcore/fleetcore/internal/api/dto"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/service"
	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService service.PlanService
	logger      *logger.Logger
}

func NewPlanHandler(planService service.PlanService, logger *logger.Logger) *PlanHandler {
	return &PlanHandler{
		planService: planService,
		logger:      logger,
	}
}

// @Summary Change a tenant's plan
// @Description Downgrades apply immediately; upgrades issue an invoice and
// @Description activate when it is paid
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID"
// @Param request body dto.ChangePlanRequest true "Plan change request"
// @Success 200 {object} dto.PlanChangeResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /tenants/{id}/plan [post]
func (h *PlanHandler) ChangePlan(c *gin.Context) {
	tenantID := c.Param("id")
	if tenantID == "" {
		c.Error(ierr.NewError("invalid tenant id").Mark(ierr.ErrValidation))
		return
	}

	var req dto.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.planService.ChangePlan(c.Request.Context(), tenantID, &req)
	if err != nil {
		h.logger.Errorw("failed to change plan",
			"error", err,
			"tenant_id", tenantID,
			"new_plan", req.NewPlan,
		)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
