package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/domain"
	"retailcore/internal/domain/orders"
	"retailcore/internal/infrastructure/http/v1/dto"
)

// SalesOrderHandler serves the sales order document.
type SalesOrderHandler struct {
	*BaseHandler
	service *orders.Service
}

// NewSalesOrderHandler creates a new sales order handler.
func NewSalesOrderHandler(base *BaseHandler, service *orders.Service) *SalesOrderHandler {
	return &SalesOrderHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /sales-orders.
func (h *SalesOrderHandler) Create(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.CreateSalesOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	customerID, err := id.Parse(req.CustomerID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customer id").
			WithDetail("customerId", req.CustomerID))
		return
	}

	order := orders.NewSalesOrder(tenantID, customerID, time.Now())
	order.Code = req.Code
	order.Notes = req.Notes
	if req.Currency != "" {
		order.Currency = req.Currency
	}
	if err := req.ApplyLines(order); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), order); err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromSalesOrder(order)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /sales-orders/:id.
func (h *SalesOrderHandler) Get(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSalesOrder(order))
}

// List handles GET /sales-orders.
func (h *SalesOrderHandler) List(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	f := orders.ListFilter{
		ListFilter: domain.ListFilter{
			Search:         c.Query("search"),
			Limit:          h.ParseIntQuery(c, "limit", 50),
			Offset:         h.ParseIntQuery(c, "offset", 0),
			OrderBy:        c.DefaultQuery("orderBy", "-created_at"),
			IncludeDeleted: c.Query("includeDeleted") == "true",
		},
	}

	if raw := c.Query("customerId"); raw != "" {
		customerID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customer id").
				WithDetail("customerId", raw))
			return
		}
		f.CustomerID = &customerID
	}

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			f.Statuses = append(f.Statuses, orders.Status(strings.TrimSpace(s)))
		}
	}

	result, err := h.service.List(c.Request.Context(), tenantID, f)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, order := range result.Items {
		items[i] = dto.FromSalesOrder(order)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Update handles PUT /sales-orders/:id.
func (h *SalesOrderHandler) Update(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSalesOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.ApplyTo(order); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), order); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSalesOrder(order))
}

// Confirm handles POST /sales-orders/:id/confirm.
func (h *SalesOrderHandler) Confirm(c *gin.Context) {
	h.transition(c, h.service.Confirm)
}

// Fulfill handles POST /sales-orders/:id/fulfill.
func (h *SalesOrderHandler) Fulfill(c *gin.Context) {
	h.transition(c, h.service.Fulfill)
}

// Cancel handles POST /sales-orders/:id/cancel.
func (h *SalesOrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *SalesOrderHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, tenantID, orderID id.ID, version int) (*orders.SalesOrder, error),
) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.VersionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := fn(c.Request.Context(), tenantID, orderID, req.Version)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSalesOrder(order))
}

// Delete handles DELETE /sales-orders/:id.
func (h *SalesOrderHandler) Delete(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	orderID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), tenantID, orderID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
