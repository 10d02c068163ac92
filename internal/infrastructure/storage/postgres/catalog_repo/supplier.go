package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/domain/catalogs/supplier"
	"retailcore/internal/infrastructure/storage/postgres"
)

const supplierTable = "cat_suppliers"

// Compile-time check.
var _ supplier.Repository = (*SupplierRepo)(nil)

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*supplier.Supplier](
			txManager,
			supplierTable,
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

// FindByTaxID retrieves a supplier by tax id within the tenant.
func (r *SupplierRepo) FindByTaxID(ctx context.Context, tenantID id.ID, taxID string) (*supplier.Supplier, error) {
	q := r.baseSelect(tenantID).
		Where(squirrel.Eq{"tax_id": taxID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	s, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("supplier", taxID)
		}
		return nil, err
	}
	return s, nil
}
