package product

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

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService[*Product](repo, txManager, "product")

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.checkSKUUnique)
	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		cfg := numerator.DefaultConfig("PR")
		code, err := s.numerator.NextCode(ctx, p.CompanyID, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	} else {
		taken, err := s.repo.ExistsByCode(ctx, p.CompanyID, p.Code)
		if err != nil {
			return err
		}
		if taken {
			return apperror.NewDuplicateCode("product", p.Code)
		}
	}

	return s.checkSKUUnique(ctx, p)
}

// checkSKUUnique rejects an SKU already used by another product of the
// same tenant.
func (s *Service) checkSKUUnique(ctx context.Context, p *Product) error {
	if p.SKU == nil || *p.SKU == "" {
		return nil
	}

	existing, err := s.repo.FindBySKU(ctx, p.CompanyID, *p.SKU)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != p.ID {
		return apperror.NewConflict("product with this SKU already exists").
			WithDetail("sku", *p.SKU)
	}
	return nil
}

// FindBySKU retrieves a product by SKU within the tenant.
func (s *Service) FindBySKU(ctx context.Context, tenantID id.ID, sku string) (*Product, error) {
	return s.repo.FindBySKU(ctx, tenantID, sku)
}
