package purchase

import (
	"context"

	"retailcore/internal/core/id"
	"retailcore/internal/domain"
)

// Repository persists purchase entries with their lines and payments.
// Every method is tenant-scoped; implementations filter by company_id.
type Repository interface {
	// Create inserts the entry, its lines and any initial payments.
	Create(ctx context.Context, e *Entry) error

	// GetByID loads the full aggregate (header, lines, payments).
	GetByID(ctx context.Context, tenantID, entryID id.ID) (*Entry, error)

	// Update writes the aggregate conditionally on e.Version being the
	// version currently stored. Zero rows touched means another writer
	// got there first: apperror.NewConcurrentModification. On success
	// the stored version is incremented and e.Version is refreshed.
	Update(ctx context.Context, e *Entry) error

	// ExistsByCode reports whether a code is taken within the tenant.
	// The check is case-insensitive.
	ExistsByCode(ctx context.Context, tenantID id.ID, code string) (bool, error)

	// List returns entries matching the filter. Lines are loaded (the
	// receiving dimension derives from them); payments are not.
	List(ctx context.Context, tenantID id.ID, f ListFilter) (domain.ListResult[*Entry], error)
}

// ListFilter narrows entry lists.
type ListFilter struct {
	domain.ListFilter

	SupplierID *id.ID
	Statuses   []Status
}
