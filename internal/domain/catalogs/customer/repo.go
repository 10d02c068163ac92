package customer

import (
	"context"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
)

// Repository defines the interface for Customer persistence.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// FindByEmail retrieves a customer by email within the tenant.
	FindByEmail(ctx context.Context, tenantID id.ID, email string) (*Customer, error)
}
