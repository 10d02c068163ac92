// Package tenant defines the tenant (company) identity shared by all
// modules. Storage is shared-schema: every table carries a company_id
// column, and every domain operation takes the tenant ID as an explicit
// parameter. The context helpers here exist only for the HTTP edge, which
// resolves the tenant once per request and then passes it explicitly.
package tenant

import (
	"context"
	"errors"
	"time"

	"retailcore/internal/core/id"
)

// Status represents tenant lifecycle state.
type Status string

const (
	// StatusActive - tenant can accept requests
	StatusActive Status = "active"

	// StatusSuspended - tenant is temporarily disabled (e.g., payment issues)
	StatusSuspended Status = "suspended"

	// StatusDeleted - tenant is marked for deletion
	StatusDeleted Status = "deleted"
)

// Tenant represents a company record.
type Tenant struct {
	ID        id.ID     `db:"id"`
	Code      string    `db:"code"` // URL-safe identifier
	Name      string    `db:"name"`
	Status    Status    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsActive returns true if tenant can accept requests.
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

// ErrNoTenantInContext is returned when the HTTP edge asks for a tenant
// that was never resolved.
var ErrNoTenantInContext = errors.New("tenant not found in context")

type ctxKey struct{}

// WithTenant stores the resolved tenant in context (HTTP middleware only).
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext retrieves the tenant resolved for this request, or nil.
func FromContext(ctx context.Context) *Tenant {
	t, _ := ctx.Value(ctxKey{}).(*Tenant)
	return t
}

// IDFromContext returns the resolved tenant ID, or an error when the
// request never passed tenant resolution.
func IDFromContext(ctx context.Context) (id.ID, error) {
	if t := FromContext(ctx); t != nil {
		return t.ID, nil
	}
	return id.Nil(), ErrNoTenantInContext
}
