package product

import (
	"context"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindBySKU retrieves a product by SKU (unique within tenant).
	FindBySKU(ctx context.Context, tenantID id.ID, sku string) (*Product, error)
}
