package orders

import (
	"context"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
)

// Repository defines persistence for sales orders.
type Repository interface {
	Create(ctx context.Context, o *SalesOrder) error
	GetByID(ctx context.Context, tenantID, orderID id.ID) (*SalesOrder, error)

	// Update writes the order conditionally on its version.
	Update(ctx context.Context, o *SalesOrder) error

	Delete(ctx context.Context, tenantID, orderID id.ID) error
	List(ctx context.Context, tenantID id.ID, f ListFilter) (domain.ListResult[*SalesOrder], error)
}

// ListFilter narrows order lists.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	Statuses   []Status
}
