// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"retailcore/internal/core/numerator"
	"retailcore/internal/core/security"
	"retailcore/internal/domain/auth"
	"retailcore/internal/domain/catalogs/customer"
	"retailcore/internal/domain/catalogs/product"
	"retailcore/internal/domain/catalogs/supplier"
	"retailcore/internal/domain/inventory"
	"retailcore/internal/domain/orders"
	"retailcore/internal/domain/purchase"
	"retailcore/internal/infrastructure/http/v1/handlers"
	"retailcore/internal/infrastructure/http/v1/middleware"
	"retailcore/internal/infrastructure/storage/postgres"
	"retailcore/internal/infrastructure/storage/postgres/catalog_repo"
	"retailcore/internal/infrastructure/storage/postgres/document_repo"
	"retailcore/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the shared database connection pool
	Pool *postgres.Pool

	// TxManager scopes transactions over the shared pool
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator generates document and catalog codes
	Numerator numerator.Generator

	// EventPublisher writes purchase events to the outbox
	EventPublisher purchase.EventPublisher

	// Auditor records entity change history
	Auditor *postgres.AuditService

	// PolicyEngine evaluates payment and receiving policies
	PolicyEngine *security.PolicyEngine

	// IdempotencyStore backs the idempotency middleware
	IdempotencyStore *postgres.IdempotencyStore

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth, no tenant required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes need tenant resolution before JWT validation
		registerAuthRoutes(v1, cfg)

		// Protected endpoints: resolve tenant, then validate JWT
		protected := v1.Group("")
		protected.Use(middleware.RequireTenant())
		protected.Use(middleware.Auth(cfg.JWTValidator))

		if cfg.IdempotencyEnabled && cfg.IdempotencyStore != nil {
			protected.Use(middleware.Idempotency(cfg.IdempotencyStore))
		}

		registerCatalogRoutes(protected, cfg)
		registerPurchaseRoutes(protected, cfg)
		registerSalesOrderRoutes(protected, cfg)
		registerInventoryRoutes(protected, cfg)
		registerAuditRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT, but need the tenant header)
	publicAuth := rg.Group("/auth")
	publicAuth.Use(middleware.RequireTenant())

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.RequireTenant())
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)

	// User administration
	users := rg.Group("/users")
	users.Use(middleware.RequireTenant())
	users.Use(middleware.Auth(cfg.JWTValidator))
	users.Use(middleware.RequireAdmin())
	users.POST("", authHandler.Register)
	users.GET("", authHandler.ListUsers)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- CUSTOMERS ---
	{
		repo := catalog_repo.NewCustomerRepo(cfg.TxManager)
		service := customer.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewCustomerHandler(baseHandler, service)
		group := catalogs.Group("/customers")
		RegisterCatalogRoutes(group, handler)
		group.GET("/by-email", middleware.RequirePermission(security.PermissionRead), handler.FindByEmail)
	}

	// --- SUPPLIERS ---
	{
		repo := catalog_repo.NewSupplierRepo(cfg.TxManager)
		service := supplier.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewSupplierHandler(baseHandler, service)
		group := catalogs.Group("/suppliers")
		RegisterCatalogRoutes(group, handler)
		group.GET("/by-tax-id", middleware.RequirePermission(security.PermissionRead), handler.FindByTaxID)
	}

	// --- PRODUCTS ---
	{
		repo := catalog_repo.NewProductRepo(cfg.TxManager)
		service := product.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewProductHandler(baseHandler, service)
		group := catalogs.Group("/products")
		RegisterCatalogRoutes(group, handler)
		group.GET("/by-sku", middleware.RequirePermission(security.PermissionRead), handler.FindBySKU)
	}
}

// registerPurchaseRoutes registers purchase entry endpoints. Receiving,
// payment and cancellation carry their own permissions so a clerk can
// receive goods without being able to pay bills.
func registerPurchaseRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	repo := document_repo.NewPurchaseEntryRepo(cfg.TxManager)
	service := purchase.NewService(
		repo,
		cfg.TxManager,
		cfg.Numerator,
		nil,
		cfg.PolicyEngine,
		cfg.EventPublisher,
		cfg.Auditor,
	)
	handler := handlers.NewPurchaseHandler(handlers.NewBaseHandler(), service)

	group := rg.Group("/purchase-entries")
	group.GET("", middleware.RequirePermission(security.PermissionRead), handler.List)
	group.POST("", middleware.RequirePermission(security.PermissionCreate), handler.Create)
	group.GET("/:id", middleware.RequirePermission(security.PermissionRead), handler.Get)
	group.POST("/:id/confirm", middleware.RequirePermission(security.PermissionUpdate), handler.Confirm)
	group.PUT("/:id/lines", middleware.RequirePermission(security.PermissionUpdate), handler.UpdateLines)
	group.POST("/:id/receive", middleware.RequirePermission(security.PermissionReceive), handler.Receive)
	group.POST("/:id/payments", middleware.RequirePermission(security.PermissionPay), handler.Pay)
	group.POST("/:id/cancel", middleware.RequirePermission(security.PermissionCancel), handler.Cancel)
}

// registerSalesOrderRoutes registers sales order endpoints.
func registerSalesOrderRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	repo := document_repo.NewSalesOrderRepo(cfg.TxManager)
	service := orders.NewService(repo, cfg.TxManager, cfg.Numerator, nil)
	handler := handlers.NewSalesOrderHandler(handlers.NewBaseHandler(), service)

	group := rg.Group("/sales-orders")
	group.GET("", middleware.RequirePermission(security.PermissionRead), handler.List)
	group.POST("", middleware.RequirePermission(security.PermissionCreate), handler.Create)
	group.GET("/:id", middleware.RequirePermission(security.PermissionRead), handler.Get)
	group.PUT("/:id", middleware.RequirePermission(security.PermissionUpdate), handler.Update)
	group.POST("/:id/confirm", middleware.RequirePermission(security.PermissionUpdate), handler.Confirm)
	group.POST("/:id/fulfill", middleware.RequirePermission(security.PermissionUpdate), handler.Fulfill)
	group.POST("/:id/cancel", middleware.RequirePermission(security.PermissionCancel), handler.Cancel)
	group.DELETE("/:id", middleware.RequirePermission(security.PermissionDelete), handler.Delete)
}

// registerInventoryRoutes registers inventory count endpoints.
func registerInventoryRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	repo := document_repo.NewInventoryCountRepo(cfg.TxManager)
	service := inventory.NewService(repo, cfg.TxManager, cfg.Numerator, nil)
	handler := handlers.NewInventoryHandler(handlers.NewBaseHandler(), service)

	group := rg.Group("/inventory-counts")
	group.GET("", middleware.RequirePermission(security.PermissionRead), handler.List)
	group.POST("", middleware.RequirePermission(security.PermissionCreate), handler.Create)
	group.GET("/:id", middleware.RequirePermission(security.PermissionRead), handler.Get)
	group.PUT("/:id", middleware.RequirePermission(security.PermissionUpdate), handler.Update)
	group.POST("/:id/complete", middleware.RequirePermission(security.PermissionUpdate), handler.Complete)
	group.DELETE("/:id", middleware.RequirePermission(security.PermissionDelete), handler.Delete)
}

// registerAuditRoutes registers the entity change history endpoint.
func registerAuditRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.Auditor == nil {
		return
	}

	handler := handlers.NewAuditHandler(handlers.NewBaseHandler(), cfg.Auditor)
	audit := rg.Group("/audit")
	audit.GET("/:entityType/:id", middleware.RequirePermission(security.PermissionAudit), handler.History)
}
