package orders

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

// Service provides business operations for sales orders.
type Service struct {
	repo      Repository
	txManager tx.Manager
	numerator numerator.Generator
	clock     clock.Clock
	hooks     *domain.HookRegistry[*SalesOrder]
}

// NewService creates a sales order service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		numerator: gen,
		clock:     clk,
		hooks:     domain.NewHookRegistry[*SalesOrder](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*SalesOrder] {
	return s.hooks
}

// Create validates and persists a new sales order.
func (s *Service) Create(ctx context.Context, o *SalesOrder) error {
	if err := s.hooks.RunBeforeCreate(ctx, o); err != nil {
		return err
	}
	if err := o.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if o.Code == "" {
			cfg := numerator.DefaultConfig("SO")
			code, err := s.numerator.NextCode(txCtx, o.CompanyID, cfg,
				&numerator.Options{Strategy: numerator.StrategyCached}, s.clock.Now())
			if err != nil {
				return fmt.Errorf("generate code: %w", err)
			}
			o.Code = code
		}
		return s.repo.Create(txCtx, o)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, o); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "sales order created", "id", o.ID, "code", o.Code)
	return nil
}

// GetByID retrieves a sales order with lines.
func (s *Service) GetByID(ctx context.Context, tenantID, orderID id.ID) (*SalesOrder, error) {
	return s.repo.GetByID(ctx, tenantID, orderID)
}

// Update persists changes to an editable order. Totals are re-derived
// before writing; the repository enforces the version condition.
func (s *Service) Update(ctx context.Context, o *SalesOrder) error {
	if err := o.CanModify(); err != nil {
		return err
	}
	o.RecalculateTotals()
	if err := o.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		o.SetUpdatedAt(s.clock.Now())
		return s.repo.Update(txCtx, o)
	})
}

// Confirm transitions a draft order to confirmed.
func (s *Service) Confirm(ctx context.Context, tenantID, orderID id.ID, version int) (*SalesOrder, error) {
	return s.transition(ctx, tenantID, orderID, version, (*SalesOrder).Confirm)
}

// Fulfill transitions a confirmed order to fulfilled.
func (s *Service) Fulfill(ctx context.Context, tenantID, orderID id.ID, version int) (*SalesOrder, error) {
	return s.transition(ctx, tenantID, orderID, version, (*SalesOrder).Fulfill)
}

// Cancel marks the order cancelled.
func (s *Service) Cancel(ctx context.Context, tenantID, orderID id.ID, version int) (*SalesOrder, error) {
	return s.transition(ctx, tenantID, orderID, version, (*SalesOrder).Cancel)
}

func (s *Service) transition(
	ctx context.Context,
	tenantID, orderID id.ID,
	version int,
	op func(*SalesOrder) error,
) (*SalesOrder, error) {
	var result *SalesOrder
	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		o, err := s.repo.GetByID(txCtx, tenantID, orderID)
		if err != nil {
			return err
		}
		if o.Version != version {
			return apperror.NewConcurrentModification("sales order", orderID)
		}
		if err := op(o); err != nil {
			return err
		}
		o.SetUpdatedAt(s.clock.Now())
		if err := s.repo.Update(txCtx, o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete marks the order deleted. Confirmed orders must be cancelled
// first.
func (s *Service) Delete(ctx context.Context, tenantID, orderID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		o, err := s.repo.GetByID(txCtx, tenantID, orderID)
		if err != nil {
			return err
		}
		if o.Status == StatusConfirmed || o.Status == StatusFulfilled {
			return apperror.NewIllegalState("only draft or cancelled orders can be deleted")
		}
		return s.repo.Delete(txCtx, tenantID, orderID)
	})
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, tenantID id.ID, f ListFilter) (domain.ListResult[*SalesOrder], error) {
	if f.Limit <= 0 {
		f.Limit = domain.DefaultListFilter().Limit
	}
	return s.repo.List(ctx, tenantID, f)
}
