package customer

import (
	"context"
	"fmt"
	"time"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/numerator"
	"retailcore/internal/core/tx"
	"retailcore/internal/domain"
)

// Service provides business logic for the Customer catalog.
// Common CRUD is delegated to the embedded domain.CatalogService.
type Service struct {
	*domain.CatalogService[*Customer]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Customer service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService[*Customer](repo, txManager, "customer")

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	return svc
}

// prepareForCreate generates the code and enforces per-tenant uniqueness.
func (s *Service) prepareForCreate(ctx context.Context, c *Customer) error {
	if c.Code == "" {
		cfg := numerator.DefaultConfig("CU")
		code, err := s.numerator.NextCode(ctx, c.CompanyID, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = code
		return nil
	}

	taken, err := s.repo.ExistsByCode(ctx, c.CompanyID, c.Code)
	if err != nil {
		return err
	}
	if taken {
		return apperror.NewDuplicateCode("customer", c.Code)
	}
	return nil
}

// FindByEmail retrieves a customer by email within the tenant.
func (s *Service) FindByEmail(ctx context.Context, tenantID id.ID, email string) (*Customer, error) {
	return s.repo.FindByEmail(ctx, tenantID, email)
}
