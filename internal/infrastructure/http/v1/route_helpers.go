// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"retailcore/internal/core/security"
	"retailcore/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// This eliminates the need to manually wire up routes for each catalog.
//
// Usage:
//
//	repo := catalog_repo.NewCustomerRepo(cfg.TxManager)
//	service := customer.NewService(repo, cfg.TxManager, cfg.Numerator)
//	handler := handlers.NewCustomerHandler(baseHandler, service)
//	RegisterCatalogRoutes(catalogs.Group("/customers"), handler)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", middleware.RequirePermission(security.PermissionRead), handler.List)
	group.POST("", middleware.RequirePermission(security.PermissionCreate), handler.Create)
	group.GET("/:id", middleware.RequirePermission(security.PermissionRead), handler.Get)
	group.PUT("/:id", middleware.RequirePermission(security.PermissionUpdate), handler.Update)
	group.DELETE("/:id", middleware.RequirePermission(security.PermissionDelete), handler.Delete)
	group.POST("/:id/deletion-mark", middleware.RequirePermission(security.PermissionDelete), handler.SetDeletionMark)
}
