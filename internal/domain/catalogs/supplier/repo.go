package supplier

import (
	"context"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// FindByTaxID retrieves a supplier by tax id (unique within tenant).
	FindByTaxID(ctx context.Context, tenantID id.ID, taxID string) (*Supplier, error)
}
