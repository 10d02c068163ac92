package dto

import (
	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/domain/inventory"
)

// InventoryLineRequest holds expected versus counted quantity for one
// product.
type InventoryLineRequest struct {
	ProductID   string `json:"productId" binding:"required"`
	ExpectedQty int64  `json:"expectedQty"`
	CountedQty  int64  `json:"countedQty"`
}

// CreateInventoryCountRequest is the request body for opening a counting
// session.
type CreateInventoryCountRequest struct {
	Code  string                 `json:"code"`
	Notes string                 `json:"notes"`
	Lines []InventoryLineRequest `json:"lines" binding:"required,min=1"`
}

// ApplyLines adds the requested lines to the count.
func (r *CreateInventoryCountRequest) ApplyLines(c *inventory.InventoryCount) error {
	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return apperror.NewValidation("invalid product id").
				WithDetail("productId", line.ProductID)
		}
		c.AddLine(productID, line.ExpectedQty, line.CountedQty)
	}
	return nil
}

// UpdateInventoryCountRequest replaces the count's lines and notes.
type UpdateInventoryCountRequest struct {
	Notes   *string                `json:"notes"`
	Lines   []InventoryLineRequest `json:"lines" binding:"required,min=1"`
	Version int                    `json:"version" binding:"required,min=1"`
}

// ApplyTo applies the update onto an existing count.
func (r *UpdateInventoryCountRequest) ApplyTo(c *inventory.InventoryCount) error {
	if r.Notes != nil {
		c.Notes = *r.Notes
	}
	c.Lines = c.Lines[:0]
	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return apperror.NewValidation("invalid product id").
				WithDetail("productId", line.ProductID)
		}
		c.AddLine(productID, line.ExpectedQty, line.CountedQty)
	}
	c.Version = r.Version
	return nil
}

// InventoryLineResponse is the line representation returned by the API.
type InventoryLineResponse struct {
	LineID      string `json:"lineId"`
	LineNo      int    `json:"lineNo"`
	ProductID   string `json:"productId"`
	ExpectedQty int64  `json:"expectedQty"`
	CountedQty  int64  `json:"countedQty"`
	Variance    int64  `json:"variance"`
}

// InventoryCountResponse is the counting session representation.
type InventoryCountResponse struct {
	DocumentResponse

	Status string `json:"status"`

	TotalExpected int64 `json:"totalExpected"`
	TotalCounted  int64 `json:"totalCounted"`
	TotalVariance int64 `json:"totalVariance"`

	Lines []InventoryLineResponse `json:"lines,omitempty"`
}

// FromInventoryCount converts a domain count to the response DTO.
func FromInventoryCount(c *inventory.InventoryCount) InventoryCountResponse {
	resp := InventoryCountResponse{
		DocumentResponse: FromDocument(c.Document),
		Status:           string(c.Status),
		TotalExpected:    c.TotalExpected.Int64(),
		TotalCounted:     c.TotalCounted.Int64(),
		TotalVariance:    c.TotalVariance.Int64(),
		Lines:            make([]InventoryLineResponse, 0, len(c.Lines)),
	}
	for _, l := range c.Lines {
		resp.Lines = append(resp.Lines, InventoryLineResponse{
			LineID:      l.LineID.String(),
			LineNo:      l.LineNo,
			ProductID:   l.ProductID.String(),
			ExpectedQty: l.ExpectedQty.Int64(),
			CountedQty:  l.CountedQty.Int64(),
			Variance:    l.Variance().Int64(),
		})
	}
	return resp
}
