package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/domain"
	"retailcore/internal/domain/purchase"
	"retailcore/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler serves the purchase entry lifecycle: create, line
// updates, confirmation, receiving, payments and cancellation. Every
// mutating endpoint takes the expected aggregate version and fails with
// a conflict when another writer got there first.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a new purchase entry handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /purchase-entries.
func (h *PurchaseHandler) Create(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.CreatePurchaseEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	createReq, err := req.ToCreateRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.service.Create(c.Request.Context(), tenantID, createReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromPurchaseEntry(entry)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /purchase-entries/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	entryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := h.service.GetByID(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPurchaseEntry(entry))
}

// List handles GET /purchase-entries.
func (h *PurchaseHandler) List(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	f := purchase.ListFilter{
		ListFilter: domain.ListFilter{
			Search:         c.Query("search"),
			Limit:          h.ParseIntQuery(c, "limit", 50),
			Offset:         h.ParseIntQuery(c, "offset", 0),
			OrderBy:        c.DefaultQuery("orderBy", "-created_at"),
			IncludeDeleted: c.Query("includeDeleted") == "true",
		},
	}

	if raw := c.Query("supplierId"); raw != "" {
		supplierID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplier id").
				WithDetail("supplierId", raw))
			return
		}
		f.SupplierID = &supplierID
	}

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			f.Statuses = append(f.Statuses, purchase.Status(strings.TrimSpace(s)))
		}
	}

	result, err := h.service.List(c.Request.Context(), tenantID, f)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, entry := range result.Items {
		items[i] = dto.FromPurchaseEntryHeader(entry)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Confirm handles POST /purchase-entries/:id/confirm.
// Promotes a draft to a confirmed entry.
func (h *PurchaseHandler) Confirm(c *gin.Context) {
	h.transition(c, func(ctx *gin.Context, tenantID, entryID id.ID, version int) (*purchase.Entry, error) {
		return h.service.Confirm(ctx.Request.Context(), tenantID, entryID, version)
	})
}

// Cancel handles POST /purchase-entries/:id/cancel.
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	h.transition(c, func(ctx *gin.Context, tenantID, entryID id.ID, version int) (*purchase.Entry, error) {
		return h.service.Cancel(ctx.Request.Context(), tenantID, entryID, version)
	})
}

// transition runs a body-less state change guarded by a version token.
func (h *PurchaseHandler) transition(
	c *gin.Context,
	fn func(c *gin.Context, tenantID, entryID id.ID, version int) (*purchase.Entry, error),
) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	entryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.VersionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := fn(c, tenantID, entryID, req.Version)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseEntry(entry))
}

// UpdateLines handles PUT /purchase-entries/:id/lines.
func (h *PurchaseHandler) UpdateLines(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	entryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePurchaseLinesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	changes, err := req.ToLineChanges()
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.service.UpdateLines(c.Request.Context(), tenantID, entryID, req.Version, changes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseEntry(entry))
}

// Receive handles POST /purchase-entries/:id/receive.
// The batch is all-or-nothing: one over-receipt rejects everything.
func (h *PurchaseHandler) Receive(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	entryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReceivePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	batch, err := req.ToReceiveBatch()
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.service.Receive(c.Request.Context(), tenantID, entryID, req.Version, batch)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseEntry(entry))
}

// Pay handles POST /purchase-entries/:id/payments.
func (h *PurchaseHandler) Pay(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	entryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RecordPurchasePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := h.service.Pay(c.Request.Context(), tenantID, entryID, req.Version, purchase.PaymentRequest{
		Method:    req.Method,
		Amount:    req.Amount,
		Reference: req.Reference,
		Note:      req.Note,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseEntry(entry))
}
