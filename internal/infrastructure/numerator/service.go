// Package numerator provides the document auto-numbering service backed by
// a shared sys_sequences table. Sequences are scoped per tenant: the same
// prefix restarts at 1 for every company.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"retailcore/internal/core/id"
	"retailcore/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type cachedRange struct {
	current int64
	max     int64
}

// Service provides document numbering functionality.
type Service struct {
	querier Querier

	// cacheMu protects ranges
	cacheMu sync.Mutex
	// ranges stores active in-memory ranges keyed by tenant+sequence
	ranges map[string]*cachedRange
}

// New creates a new numerator service.
func New(querier Querier) *Service {
	return &Service{
		querier: querier,
		ranges:  make(map[string]*cachedRange),
	}
}

var _ numerator.Generator = (*Service)(nil)

// NextCode generates the next document code for the tenant.
// Pattern: PREFIX-YEAR-XXXXX (e.g., PE-2026-00001).
func (s *Service) NextCode(ctx context.Context, tenantID id.ID, cfg numerator.Config, opts *numerator.Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	if opts == nil {
		opts = numerator.DefaultOptions()
	}

	key := s.buildKey(tenantID, cfg, period)

	var num int64
	var err error
	switch opts.Strategy {
	case numerator.StrategyCached:
		num, err = s.nextCached(ctx, tenantID, cfg, period, key, opts)
	case numerator.StrategyStrict:
		fallthrough
	default:
		num, err = s.nextStrict(ctx, tenantID, cfg, period)
	}
	if err != nil {
		return "", err
	}

	return s.formatCode(cfg, period, num), nil
}

// SetNextCode sets the sequence to a specific value (migrations only).
func (s *Service) SetNextCode(ctx context.Context, tenantID id.ID, cfg numerator.Config, period time.Time, value int64) error {
	var current int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (company_id, sequence_type, year, current_val)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (company_id, sequence_type, year) DO UPDATE SET current_val = EXCLUDED.current_val
        RETURNING current_val
	`, tenantID, cfg.Prefix, s.periodYear(cfg, period), value).Scan(&current)
	if err != nil {
		return fmt.Errorf("set next code: %w", err)
	}

	// Drop any cached range for this key so the next call refetches.
	key := s.buildKey(tenantID, cfg, period)
	s.cacheMu.Lock()
	delete(s.ranges, key)
	s.cacheMu.Unlock()

	return nil
}

// nextStrict fetches the next number directly from DB using UPSERT + RETURNING.
func (s *Service) nextStrict(ctx context.Context, tenantID id.ID, cfg numerator.Config, period time.Time) (int64, error) {
	var num int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (company_id, sequence_type, year, current_val)
        VALUES ($1, $2, $3, 1)
        ON CONFLICT (company_id, sequence_type, year) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, tenantID, cfg.Prefix, s.periodYear(cfg, period)).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("strict next: %w", err)
	}
	return num, nil
}

// nextCached serves numbers from an in-memory range, refilling from DB when
// the range is exhausted.
func (s *Service) nextCached(ctx context.Context, tenantID id.ID, cfg numerator.Config, period time.Time, key string, opts *numerator.Options) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, exists := s.ranges[key]
	if !exists {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		size := opts.RangeSize
		if size <= 0 {
			size = 50
		}

		var newMax int64
		err := s.querier.QueryRow(ctx, `
            INSERT INTO sys_sequences (company_id, sequence_type, year, current_val)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (company_id, sequence_type, year) DO UPDATE SET current_val = sys_sequences.current_val + $4
            RETURNING current_val
		`, tenantID, cfg.Prefix, s.periodYear(cfg, period), size).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("allocate range: %w", err)
		}

		rng.max = newMax
		rng.current = newMax - size
	}

	rng.current++
	return rng.current, nil
}

// periodYear collapses the period according to the reset policy.
// Sequences that never reset share a single bucket (year 0).
func (s *Service) periodYear(cfg numerator.Config, period time.Time) int {
	if cfg.ResetPeriod == "never" {
		return 0
	}
	return period.Year()
}

func (s *Service) buildKey(tenantID id.ID, cfg numerator.Config, period time.Time) string {
	return fmt.Sprintf("%s:%s:%d", tenantID, cfg.Prefix, s.periodYear(cfg, period))
}

func (s *Service) formatCode(cfg numerator.Config, period time.Time, num int64) string {
	pad := cfg.PadWidth
	if pad <= 0 {
		pad = 5
	}
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%d-%0*d", cfg.Prefix, period.Year(), pad, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, pad, num)
}
