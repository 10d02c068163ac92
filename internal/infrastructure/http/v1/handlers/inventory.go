package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"retailcore/internal/domain"
	"retailcore/internal/domain/inventory"
	"retailcore/internal/infrastructure/http/v1/dto"
)

// InventoryHandler serves inventory counting sessions.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory count handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /inventory-counts.
func (h *InventoryHandler) Create(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.CreateInventoryCountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	count := inventory.NewInventoryCount(tenantID, time.Now())
	count.Code = req.Code
	count.Notes = req.Notes
	if err := req.ApplyLines(count); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), count); err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromInventoryCount(count)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /inventory-counts/:id.
func (h *InventoryHandler) Get(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	countID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	count, err := h.service.GetByID(c.Request.Context(), tenantID, countID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInventoryCount(count))
}

// List handles GET /inventory-counts.
func (h *InventoryHandler) List(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	f := inventory.ListFilter{
		ListFilter: domain.ListFilter{
			Search:         c.Query("search"),
			Limit:          h.ParseIntQuery(c, "limit", 50),
			Offset:         h.ParseIntQuery(c, "offset", 0),
			OrderBy:        c.DefaultQuery("orderBy", "-created_at"),
			IncludeDeleted: c.Query("includeDeleted") == "true",
		},
	}

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			f.Statuses = append(f.Statuses, inventory.Status(strings.TrimSpace(s)))
		}
	}

	result, err := h.service.List(c.Request.Context(), tenantID, f)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, count := range result.Items {
		items[i] = dto.FromInventoryCount(count)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Update handles PUT /inventory-counts/:id.
func (h *InventoryHandler) Update(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	countID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateInventoryCountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	count, err := h.service.GetByID(c.Request.Context(), tenantID, countID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.ApplyTo(count); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), count); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInventoryCount(count))
}

// Complete handles POST /inventory-counts/:id/complete.
func (h *InventoryHandler) Complete(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	countID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.VersionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	count, err := h.service.Complete(c.Request.Context(), tenantID, countID, req.Version)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInventoryCount(count))
}

// Delete handles DELETE /inventory-counts/:id.
func (h *InventoryHandler) Delete(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	countID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), tenantID, countID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
