package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/domain/catalogs/supplier"
	"retailcore/internal/infrastructure/http/v1/dto"
)

// SupplierHandler serves the supplier catalog.
type SupplierHandler struct {
	*CatalogHandler[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]
	service *supplier.Service
}

// NewSupplierHandler creates a new supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	config := CatalogHandlerConfig[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]{
		Service:    service.CatalogService,
		EntityName: "supplier",

		MapCreateDTO: func(tenantID id.ID, req dto.CreateSupplierRequest) *supplier.Supplier {
			return req.ToEntity(tenantID)
		},
		MapUpdateDTO: func(req dto.UpdateSupplierRequest, existing *supplier.Supplier) *supplier.Supplier {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(s *supplier.Supplier) any {
			return dto.FromSupplier(s)
		},
	}

	return &SupplierHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// FindByTaxID handles GET /suppliers/by-tax-id?taxId=...
func (h *SupplierHandler) FindByTaxID(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	taxID := c.Query("taxId")
	if taxID == "" {
		h.Error(c, apperror.NewValidation("taxId is required").WithDetail("query", "taxId"))
		return
	}

	found, err := h.service.FindByTaxID(c.Request.Context(), tenantID, taxID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSupplier(found))
}
