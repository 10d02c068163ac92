package domain

import (
	"context"
	"strings"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/entity"
	"retailcore/internal/core/id"
	"retailcore/internal/core/tx"
	"retailcore/pkg/logger"
)

// CatalogService provides generic CRUD operations for catalog entities
// with lifecycle hooks and transaction management.
type CatalogService[T entity.Validatable] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]
	name      string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T entity.Validatable](
	repo CatalogRepository[T],
	txManager tx.Manager,
	name string,
) *CatalogService[T] {
	return &CatalogService[T]{
		repo:      repo,
		txManager: txManager,
		hooks:     NewHookRegistry[T](),
		name:      name,
	}
}

// Hooks returns the hook registry for customizing lifecycle behavior.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Create validates and persists a new entity.
func (s *CatalogService[T]) Create(ctx context.Context, e T) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.hooks.RunBeforeCreate(txCtx, e); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, e); err != nil {
			return err
		}
		if err := s.hooks.RunAfterCreate(txCtx, e); err != nil {
			return err
		}
		logger.Debug(txCtx, "catalog entity created", "catalog", s.name)
		return nil
	})
}

// GetByID retrieves an entity by ID within the tenant.
func (s *CatalogService[T]) GetByID(ctx context.Context, tenantID, entityID id.ID) (T, error) {
	return s.repo.GetByID(ctx, tenantID, entityID)
}

// GetByCode retrieves an entity by its code within the tenant.
func (s *CatalogService[T]) GetByCode(ctx context.Context, tenantID id.ID, code string) (T, error) {
	var zero T
	code = strings.TrimSpace(code)
	if code == "" {
		return zero, apperror.NewValidation("code is required")
	}
	return s.repo.GetByCode(ctx, tenantID, code)
}

// Update validates and persists changes to an existing entity.
// The repository enforces optimistic locking on the entity version.
func (s *CatalogService[T]) Update(ctx context.Context, e T) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.hooks.RunBeforeUpdate(txCtx, e); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, e); err != nil {
			return err
		}
		return s.hooks.RunAfterUpdate(txCtx, e)
	})
}

// Delete soft-deletes an entity.
func (s *CatalogService[T]) Delete(ctx context.Context, tenantID, entityID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		e, err := s.repo.GetByID(txCtx, tenantID, entityID)
		if err != nil {
			return err
		}
		if err := s.hooks.RunBeforeDelete(txCtx, e); err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, tenantID, entityID); err != nil {
			return err
		}
		return s.hooks.RunAfterDelete(txCtx, e)
	})
}

// SetDeletionMark sets or clears the deletion mark without removing data.
func (s *CatalogService[T]) SetDeletionMark(ctx context.Context, tenantID, entityID id.ID, marked bool) error {
	return s.repo.SetDeletionMark(ctx, tenantID, entityID, marked)
}

// List retrieves entities matching the filter.
func (s *CatalogService[T]) List(ctx context.Context, tenantID id.ID, f ListFilter) (ListResult[T], error) {
	if f.Limit <= 0 {
		f.Limit = DefaultListFilter().Limit
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	return s.repo.List(ctx, tenantID, f)
}

// Exists reports whether an entity exists within the tenant.
func (s *CatalogService[T]) Exists(ctx context.Context, tenantID, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, tenantID, entityID)
}
