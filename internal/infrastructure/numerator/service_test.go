package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"retailcore/internal/core/id"
	"retailcore/internal/core/numerator"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences upsert: args are
// (company_id, sequence_type, year[, increment]).
type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
	lastIncr     int64
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	var increment int64 = 1
	if len(args) == 4 {
		if val, ok := args[3].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	m.lastIncr = increment

	return &mockRow{val: m.currentValue}
}

func TestNextCode_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	tenantID := id.New()
	cfg := numerator.DefaultConfig("TEST")
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.NextCode(ctx, tenantID, cfg, nil, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TEST-2026-00001" {
		t.Errorf("expected TEST-2026-00001, got %s", num)
	}

	num, err = svc.NextCode(ctx, tenantID, cfg, nil, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TEST-2026-00002" {
		t.Errorf("expected TEST-2026-00002, got %s", num)
	}
}

func TestNextCode_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	tenantID := id.New()
	cfg := numerator.DefaultConfig("PE")
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	opts := &numerator.Options{
		Strategy:  numerator.StrategyCached,
		RangeSize: 10,
	}

	// First call allocates 1..10 in one DB roundtrip and returns 1.
	num, err := svc.NextCode(ctx, tenantID, cfg, opts, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PE-2026-00001" {
		t.Errorf("expected PE-2026-00001, got %s", num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected DB value to be 10, got %d", q.currentValue)
	}

	// Subsequent calls within the range do not touch the DB.
	for i := 2; i <= 10; i++ {
		num, err = svc.NextCode(ctx, tenantID, cfg, opts, period)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if num != "PE-2026-00010" {
		t.Errorf("expected PE-2026-00010, got %s", num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected DB value to stay 10, got %d", q.currentValue)
	}

	// Range exhausted - next call refills.
	num, err = svc.NextCode(ctx, tenantID, cfg, opts, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "PE-2026-00011" {
		t.Errorf("expected PE-2026-00011, got %s", num)
	}
	if q.currentValue != 20 {
		t.Errorf("expected DB value to be 20, got %d", q.currentValue)
	}
}

func TestNextCode_TenantIsolatedCache(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := numerator.DefaultConfig("SO")
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	opts := &numerator.Options{Strategy: numerator.StrategyCached, RangeSize: 5}

	// Two tenants must not share an in-memory range.
	a, b := id.New(), id.New()

	if _, err := svc.NextCode(ctx, a, cfg, opts, period); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.NextCode(ctx, b, cfg, opts, period); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.cacheMu.Lock()
	defer svc.cacheMu.Unlock()
	if len(svc.ranges) != 2 {
		t.Errorf("expected 2 cached ranges, got %d", len(svc.ranges))
	}
}

func TestNextCode_NoYear(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	cfg := numerator.Config{Prefix: "USR", IncludeYear: false, PadWidth: 4, ResetPeriod: "never"}

	num, err := svc.NextCode(context.Background(), id.New(), cfg, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "USR-0001" {
		t.Errorf("expected USR-0001, got %s", num)
	}
}
