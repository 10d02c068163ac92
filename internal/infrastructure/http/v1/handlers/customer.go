package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/domain/catalogs/customer"
	"retailcore/internal/infrastructure/http/v1/dto"
)

// CustomerHandler serves the customer catalog. CRUD comes from the
// generic catalog handler; lookups are added on top.
type CustomerHandler struct {
	*CatalogHandler[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]
	service *customer.Service
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	config := CatalogHandlerConfig[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]{
		Service:    service.CatalogService,
		EntityName: "customer",

		MapCreateDTO: func(tenantID id.ID, req dto.CreateCustomerRequest) *customer.Customer {
			return req.ToEntity(tenantID)
		},
		MapUpdateDTO: func(req dto.UpdateCustomerRequest, existing *customer.Customer) *customer.Customer {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(c *customer.Customer) any {
			return dto.FromCustomer(c)
		},
	}

	return &CustomerHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// FindByEmail handles GET /customers/by-email?email=...
func (h *CustomerHandler) FindByEmail(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	email := c.Query("email")
	if email == "" {
		h.Error(c, apperror.NewValidation("email is required").WithDetail("query", "email"))
		return
	}

	found, err := h.service.FindByEmail(c.Request.Context(), tenantID, email)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCustomer(found))
}
