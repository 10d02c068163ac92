package dto

import (
	"github.com/shopspring/decimal"

	"retailcore/internal/core/id"
	"retailcore/internal/domain/catalogs/product"
)

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code           string          `json:"code"`
	Name           string          `json:"name" binding:"required"`
	SKU            *string         `json:"sku"`
	Description    *string         `json:"description"`
	DefaultCost    decimal.Decimal `json:"defaultCost"`
	DefaultPrice   decimal.Decimal `json:"defaultPrice"`
	TrackInventory bool            `json:"trackInventory"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity(tenantID id.ID) *product.Product {
	p := product.NewProduct(tenantID, r.Code, r.Name)
	p.SKU = r.SKU
	p.Description = r.Description
	p.DefaultCost = r.DefaultCost
	p.DefaultPrice = r.DefaultPrice
	p.TrackInventory = r.TrackInventory
	return p
}

// UpdateProductRequest is the request body for updating a product.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Code           *string          `json:"code"`
	Name           *string          `json:"name"`
	SKU            *string          `json:"sku"`
	Description    *string          `json:"description"`
	DefaultCost    *decimal.Decimal `json:"defaultCost"`
	DefaultPrice   *decimal.Decimal `json:"defaultPrice"`
	TrackInventory *bool            `json:"trackInventory"`
	Version        int              `json:"version" binding:"required,min=1"`
}

// ApplyTo applies non-nil fields onto an existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Code != nil {
		p.Code = *r.Code
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.SKU != nil {
		p.SKU = r.SKU
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.DefaultCost != nil {
		p.DefaultCost = *r.DefaultCost
	}
	if r.DefaultPrice != nil {
		p.DefaultPrice = *r.DefaultPrice
	}
	if r.TrackInventory != nil {
		p.TrackInventory = *r.TrackInventory
	}
	p.Version = r.Version
}

// ProductResponse is the product representation returned by the API.
type ProductResponse struct {
	CatalogResponse
	SKU            *string         `json:"sku,omitempty"`
	Description    *string         `json:"description,omitempty"`
	DefaultCost    decimal.Decimal `json:"defaultCost"`
	DefaultPrice   decimal.Decimal `json:"defaultPrice"`
	TrackInventory bool            `json:"trackInventory"`
}

// FromProduct converts a domain entity to the response DTO.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		SKU:             p.SKU,
		Description:     p.Description,
		DefaultCost:     p.DefaultCost,
		DefaultPrice:    p.DefaultPrice,
		TrackInventory:  p.TrackInventory,
	}
}
