// Package product provides the Product catalog.
// Products are referenced by purchase entry and sales order lines.
package product

import (
	"context"
	"strings"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/entity"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

// Product represents a sellable or purchasable item within a tenant.
type Product struct {
	entity.Catalog

	// SKU is the stock keeping unit, unique within the tenant when set.
	SKU *string `db:"sku" json:"sku,omitempty"`

	Description *string `db:"description" json:"description,omitempty"`

	// DefaultCost pre-fills the unit cost on purchase lines.
	DefaultCost types.Money `db:"default_cost" json:"defaultCost"`

	// DefaultPrice pre-fills the unit price on sales order lines.
	DefaultPrice types.Money `db:"default_price" json:"defaultPrice"`

	// TrackInventory marks products counted in inventory documents.
	TrackInventory bool `db:"track_inventory" json:"trackInventory"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(companyID id.ID, code, name string) *Product {
	return &Product{
		Catalog: entity.NewCatalog(companyID, code, name),
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.SKU != nil && strings.TrimSpace(*p.SKU) != *p.SKU {
		return apperror.NewValidation("sku cannot have leading or trailing spaces").
			WithDetail("field", "sku")
	}

	if p.DefaultCost.IsNegative() {
		return apperror.NewValidation("default cost cannot be negative").
			WithDetail("field", "defaultCost")
	}

	if p.DefaultPrice.IsNegative() {
		return apperror.NewValidation("default price cannot be negative").
			WithDetail("field", "defaultPrice")
	}

	return nil
}
