// Package numerator provides domain contracts for document auto-numbering.
// Implementations live in infrastructure layer.
package numerator

import (
	"context"
	"time"

	"retailcore/internal/core/id"
)

// Generator generates sequential document codes scoped to a tenant.
// This is the domain contract - implementations live in infrastructure layer.
type Generator interface {
	// NextCode generates the next document code for the tenant.
	// Pattern: PREFIX-YEAR-XXXXX (e.g., PE-2026-00001)
	//
	// Supports Strict (DB-level) and Cached (Memory-level) strategies.
	NextCode(ctx context.Context, tenantID id.ID, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextCode sets the next sequence value (for migration purposes).
	SetNextCode(ctx context.Context, tenantID id.ID, cfg Config, period time.Time, value int64) error
}
