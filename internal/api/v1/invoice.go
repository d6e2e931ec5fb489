package v1

import (
	"net/http"
	"strconv"

	"github.com/fleetcore/fleetcore/internal/api/dto"
	"github.com/fleetcore/fleetcore/internal/domain/invoice"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/service"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *logger.Logger
}

func NewInvoiceHandler(invoiceService service.InvoiceService, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// @Summary Create a new invoice
// @Description Issue an invoice with the next global invoice number
// @Tags Invoices
// @Accept json
// @Produce json
// @Param invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		h.logger.Errorw("failed to create invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get an invoice by ID
// @Description Get detailed information about an invoice
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List invoices
// @Description List the tenant's invoices, newest first
// @Tags Invoices
// @Produce json
// @Param status query string false "Invoice status filter"
// @Param type query string false "Invoice type filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	filter, err := parseInvoiceFilter(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.logger.Errorw("failed to list invoices", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel an invoice
// @Description Cancel a pending or overdue invoice; paid invoices cannot be canceled
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /invoices/{id}/cancel [post]
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.CancelInvoice(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorw("failed to cancel invoice", "error", err, "invoice_id", id)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func parseInvoiceFilter(c *gin.Context) (*invoice.Filter, error) {
	filter := &invoice.Filter{}

	if raw := c.Query("status"); raw != "" {
		status := types.InvoiceStatus(raw)
		if err := status.Validate(); err != nil {
			return nil, err
		}
		filter.InvoiceStatus = &status
	}
	if raw := c.Query("type"); raw != "" {
		invoiceType := types.InvoiceType(raw)
		if err := invoiceType.Validate(); err != nil {
			return nil, err
		}
		filter.InvoiceType = &invoiceType
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return nil, ierr.NewError("invalid limit").
				WithHint("Limit must be a non-negative integer").
				Mark(ierr.ErrValidation)
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return nil, ierr.NewError("invalid offset").
				WithHint("Offset must be a non-negative integer").
				Mark(ierr.ErrValidation)
		}
		filter.Offset = offset
	}

	return filter, nil
}
