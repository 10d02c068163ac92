package inventory

import (
	"context"
	"fmt"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/clock"
	"retailcore/internal/core/id"
	"retailcore/internal/core/numerator"
	"retailcore/internal/core/tx"
	"retailcore/internal/domain"
	"retailcore/pkg/logger"
)

// Service provides business operations for inventory counts.
type Service struct {
	repo      Repository
	txManager tx.Manager
	numerator numerator.Generator
	clock     clock.Clock
}

// NewService creates an inventory count service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		numerator: gen,
		clock:     clk,
	}
}

// Create validates and persists a new counting session.
func (s *Service) Create(ctx context.Context, c *InventoryCount) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if c.Code == "" {
			cfg := numerator.DefaultConfig("IC")
			code, err := s.numerator.NextCode(txCtx, c.CompanyID, cfg,
				&numerator.Options{Strategy: numerator.StrategyCached}, s.clock.Now())
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			c.Code = code
		}
		return s.repo.Create(txCtx, c)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "inventory count created", "id", c.ID, "code", c.Code)
	return nil
}

// GetByID retrieves a count with lines.
func (s *Service) GetByID(ctx context.Context, tenantID, countID id.ID) (*InventoryCount, error) {
	return s.repo.GetByID(ctx, tenantID, countID)
}

// Update persists changes to an open count.
func (s *Service) Update(ctx context.Context, c *InventoryCount) error {
	if err := c.CanModify(); err != nil {
		return err
	}
	c.RecalculateTotals()
	if err := c.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		c.SetUpdatedAt(s.clock.Now())
		return s.repo.Update(txCtx, c)
	})
}

// Complete closes the session after a final recalculation.
func (s *Service) Complete(ctx context.Context, tenantID, countID id.ID, version int) (*InventoryCount, error) {
	var result *InventoryCount
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		c, err := s.repo.GetByID(txCtx, tenantID, countID)
		if err != nil {
			return err
		}
		if c.Version != version {
			return apperror.NewConcurrentModification("inventory count", countID)
		}
		if err := c.Complete(); err != nil {
			return err
		}
		c.RecalculateTotals()
		c.SetUpdatedAt(s.clock.Now())
		if err := s.repo.Update(txCtx, c); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory count completed",
		"id", result.ID,
		"variance", result.TotalVariance.Int64())
	return result, nil
}

// Delete marks an open count deleted. Completed counts are kept for
// audit history.
func (s *Service) Delete(ctx context.Context, tenantID, countID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		c, err := s.repo.GetByID(txCtx, tenantID, countID)
		if err != nil {
			return err
		}
		if c.Status == StatusCompleted {
			return apperror.NewIllegalState("completed counts cannot be deleted")
		}
		return s.repo.Delete(txCtx, tenantID, countID)
	})
}

// List retrieves counts with filtering.
func (s *Service) List(ctx context.Context, tenantID id.ID, f ListFilter) (domain.ListResult[*InventoryCount], error) {
	if f.Limit <= 0 {
		f.Limit = domain.DefaultListFilter().Limit
	}
	return s.repo.List(ctx, tenantID, f)
}
