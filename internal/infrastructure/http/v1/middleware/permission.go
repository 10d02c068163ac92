package middleware

import (
	"github.com/gin-gonic/gin"

	"retailcore/internal/core/security"
)

// RequirePermission checks the authenticated user's role against one
// permission. Roles map to fixed permission sets in core/security; the
// admin flag bypasses the check entirely.
func RequirePermission(perm security.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := security.RequirePermission(c.Request.Context(), perm); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin restricts the route to admin users.
func RequireAdmin() gin.HandlerFunc {
	return RequirePermission(security.PermissionAdmin)
}
