package supplier

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

// Service provides business logic for the Supplier catalog.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService[*Supplier](repo, txManager, "supplier")

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.checkTaxIDUnique)
	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, sp *Supplier) error {
	if sp.Code == "" {
		cfg := numerator.DefaultConfig("SU")
		code, err := s.numerator.NextCode(ctx, sp.CompanyID, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		sp.Code = code
	} else {
		taken, err := s.repo.ExistsByCode(ctx, sp.CompanyID, sp.Code)
		if err != nil {
			return err
		}
		if taken {
			return apperror.NewDuplicateCode("supplier", sp.Code)
		}
	}

	return s.checkTaxIDUnique(ctx, sp)
}

// checkTaxIDUnique rejects a tax id already used by another supplier of
// the same tenant.
func (s *Service) checkTaxIDUnique(ctx context.Context, sp *Supplier) error {
	if sp.TaxID == nil || *sp.TaxID == "" {
		return nil
	}

	existing, err := s.repo.FindByTaxID(ctx, sp.CompanyID, *sp.TaxID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != sp.ID {
		return apperror.NewConflict("supplier with this tax id already exists").
			WithDetail("taxId", *sp.TaxID)
	}
	return nil
}

// FindByTaxID retrieves a supplier by tax id within the tenant.
func (s *Service) FindByTaxID(ctx context.Context, tenantID id.ID, taxID string) (*Supplier, error) {
	return s.repo.FindByTaxID(ctx, tenantID, taxID)
}
