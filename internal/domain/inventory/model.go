// Package inventory provides the InventoryCount document.
// Records a physical count against expected quantities and derives the
// variance per line.
package inventory

import (
	"context"
	"time"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/entity"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

// Status of an inventory count.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusCompleted Status = "COMPLETED"
)

// InventoryCount represents one counting session.
type InventoryCount struct {
	entity.Document

	Status Status `db:"status" json:"status"`

	// Totals (derived from lines)
	TotalExpected types.Quantity `db:"total_expected" json:"totalExpected"`
	TotalCounted  types.Quantity `db:"total_counted" json:"totalCounted"`
	TotalVariance types.Quantity `db:"total_variance" json:"totalVariance"`

	Lines []Line `db:"-" json:"lines"`
}

// Line holds expected versus counted quantity for one product.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	ExpectedQty types.Quantity `db:"expected_qty" json:"expectedQty"`
	CountedQty  types.Quantity `db:"counted_qty" json:"countedQty"`
}

// Variance returns countedQty - expectedQty.
func (l *Line) Variance() types.Quantity {
	return l.CountedQty.Sub(l.ExpectedQty)
}

// NewInventoryCount creates a new open counting session.
func NewInventoryCount(companyID id.ID, now time.Time) *InventoryCount {
	return &InventoryCount{
		Document: entity.NewDocument(companyID, now),
		Status:   StatusOpen,
		Lines:    make([]Line, 0),
	}
}

// AddLine appends a line and recalculates totals.
func (c *InventoryCount) AddLine(productID id.ID, expected, counted int64) {
	c.Lines = append(c.Lines, Line{
		LineID:      id.New(),
		LineNo:      len(c.Lines) + 1,
		ProductID:   productID,
		ExpectedQty: types.NewQuantity(expected),
		CountedQty:  types.NewQuantity(counted),
	})
	c.RecalculateTotals()
}

// RecalculateTotals re-derives header totals from lines.
func (c *InventoryCount) RecalculateTotals() {
	c.TotalExpected = 0
	c.TotalCounted = 0
	for i := range c.Lines {
		c.TotalExpected = c.TotalExpected.Add(c.Lines[i].ExpectedQty)
		c.TotalCounted = c.TotalCounted.Add(c.Lines[i].CountedQty)
	}
	c.TotalVariance = c.TotalCounted.Sub(c.TotalExpected)
}

// Complete closes the counting session.
func (c *InventoryCount) Complete() error {
	if c.Status != StatusOpen {
		return apperror.NewIllegalState("count is already completed").
			WithDetail("status", string(c.Status))
	}
	c.Status = StatusCompleted
	return nil
}

// CanModify reports whether lines may still change.
func (c *InventoryCount) CanModify() error {
	if c.Status != StatusOpen {
		return apperror.NewIllegalState("completed count is not editable").
			WithDetail("status", string(c.Status))
	}
	return nil
}

// Validate implements entity.Validatable.
func (c *InventoryCount) Validate(ctx context.Context) error {
	if err := c.Document.Validate(ctx); err != nil {
		return err
	}

	if len(c.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	seen := make(map[id.ID]bool, len(c.Lines))
	for i := range c.Lines {
		line := &c.Lines[i]
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if seen[line.ProductID] {
			return apperror.NewValidation("product counted twice").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		seen[line.ProductID] = true
		if line.ExpectedQty.IsNegative() || line.CountedQty.IsNegative() {
			return apperror.NewValidation("quantities cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
