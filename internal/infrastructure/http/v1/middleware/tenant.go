package middleware

import (
	"github.com/gin-gonic/gin"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/tenant"
)

// TenantHeader is the HTTP header for tenant identification.
const TenantHeader = "X-Tenant-ID"

// RequireTenant resolves the tenant once per request from the X-Tenant-ID
// header and stores it in the request context. Storage is shared-schema,
// so resolution is pure identification; isolation happens in the
// repositories, which scope every query by company_id. Handlers read the
// resolved ID and pass it to services explicitly.
//
// Auth runs after this middleware and rejects tokens issued for a
// different tenant, so a forged header cannot reach another company's
// rows.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantHeader)
		if raw == "" {
			_ = c.Error(
				apperror.NewValidation("tenant is required").
					WithDetail("header", TenantHeader),
			)
			c.Abort()
			return
		}

		tenantID, err := id.Parse(raw)
		if err != nil {
			_ = c.Error(
				apperror.NewValidation("invalid tenant id").
					WithDetail("header", TenantHeader).
					WithDetail("value", raw),
			)
			c.Abort()
			return
		}

		ctx := tenant.WithTenant(c.Request.Context(), &tenant.Tenant{
			ID:     tenantID,
			Status: tenant.StatusActive,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set("tenant_id", tenantID.String())

		c.Next()
	}
}
