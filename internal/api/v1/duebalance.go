package v1

import (
	"net/http"
	"time"

	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/service"
	"github.com/gin-gonic/gin"
)

type DueBalanceHandler struct {
	dueBalanceService service.DueBalanceService
	logger            *logger.Logger
}

func NewDueBalanceHandler(dueBalanceService service.DueBalanceService, logger *logger.Logger) *DueBalanceHandler {
	return &DueBalanceHandler{
		dueBalanceService: dueBalanceService,
		logger:            logger,
	}
}

// @Summary Due-balance feed
// @Description Outstanding remittance obligations and expiring vehicle
// @Description documents for the tenant's dashboard. Served from a short
// @Description per-tenant cache.
// @Tags DueBalances
// @Produce json
// @Success 200 {object} dto.DueBalanceFeedResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /due-balances [get]
func (h *DueBalanceHandler) GetFeed(c *gin.Context) {
	resp, err := h.dueBalanceService.GetFeed(c.Request.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Errorw("failed to build due-balance feed", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
