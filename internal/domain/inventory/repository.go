package inventory

import (
	"context"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
)

// Repository defines persistence for inventory counts.
type Repository interface {
	Create(ctx context.Context, c *InventoryCount) error
	GetByID(ctx context.Context, tenantID, countID id.ID) (*InventoryCount, error)
	Update(ctx context.Context, c *InventoryCount) error
	Delete(ctx context.Context, tenantID, countID id.ID) error
	List(ctx context.Context, tenantID id.ID, f ListFilter) (domain.ListResult[*InventoryCount], error)
}

// ListFilter narrows count lists.
type ListFilter struct {
	domain.ListFilter

	Statuses []Status
}
