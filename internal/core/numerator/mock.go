// Package numerator provides domain contracts for document auto-numbering.
package numerator

import (
	"context"
	"time"

	"retailcore/internal/core/id"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies.
type MockGenerator struct {
	NextCodeFunc    func(ctx context.Context, tenantID id.ID, cfg Config, opts *Options, period time.Time) (string, error)
	SetNextCodeFunc func(ctx context.Context, tenantID id.ID, cfg Config, period time.Time, value int64) error
}

// NextCode implements Generator.
func (m *MockGenerator) NextCode(ctx context.Context, tenantID id.ID, cfg Config, opts *Options, period time.Time) (string, error) {
	if m.NextCodeFunc != nil {
		return m.NextCodeFunc(ctx, tenantID, cfg, opts, period)
	}
	// Default: return predictable mock code
	return "MOCK-2026-00001", nil
}

// SetNextCode implements Generator.
func (m *MockGenerator) SetNextCode(ctx context.Context, tenantID id.ID, cfg Config, period time.Time, value int64) error {
	if m.SetNextCodeFunc != nil {
		return m.SetNextCodeFunc(ctx, tenantID, cfg, period, value)
	}
	return nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
