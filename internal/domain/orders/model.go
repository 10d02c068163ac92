// Package orders provides the SalesOrder document.
// A thin CRUD document: totals are re-derived from lines on every
// mutation, with a simple linear status lifecycle.
package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/entity"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

// Status of a sales order.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusConfirmed Status = "CONFIRMED"
	StatusFulfilled Status = "FULFILLED"
	StatusCancelled Status = "CANCELLED"
)

// SalesOrder represents a customer order.
type SalesOrder struct {
	entity.Document

	CustomerID id.ID  `db:"customer_id" json:"customerId"`
	Status     Status `db:"status" json:"status"`
	Currency   string `db:"currency" json:"currency"`

	// Totals (derived from lines)
	Subtotal      types.Money `db:"subtotal" json:"subtotal"`
	DiscountTotal types.Money `db:"discount_total" json:"discountTotal"`
	GrandTotal    types.Money `db:"grand_total" json:"grandTotal"`

	Lines []Line `db:"-" json:"lines"`
}

// Line represents one ordered product position.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID `db:"product_id" json:"productId"`

	Qty            types.Quantity `db:"qty" json:"qty"`
	UnitPrice      types.Money    `db:"unit_price" json:"unitPrice"`
	DiscountAmount types.Money    `db:"discount_amount" json:"discountAmount"`
}

// Amount returns qty*unitPrice - discount at full precision.
func (l *Line) Amount() types.Money {
	return l.Qty.Decimal().Mul(l.UnitPrice).Sub(l.DiscountAmount)
}

// NewSalesOrder creates a new draft sales order.
func NewSalesOrder(companyID, customerID id.ID, now time.Time) *SalesOrder {
	return &SalesOrder{
		Document:   entity.NewDocument(companyID, now),
		CustomerID: customerID,
		Status:     StatusDraft,
		Currency:   "USD",
		Lines:      make([]Line, 0),
	}
}

// AddLine appends a line and recalculates totals.
func (o *SalesOrder) AddLine(productID id.ID, qty int64, unitPrice, discount types.Money) {
	o.Lines = append(o.Lines, Line{
		LineID:         id.New(),
		LineNo:         len(o.Lines) + 1,
		ProductID:      productID,
		Qty:            types.NewQuantity(qty),
		UnitPrice:      unitPrice,
		DiscountAmount: discount,
	})
	o.RecalculateTotals()
}

// RecalculateTotals re-derives the header totals from the lines.
func (o *SalesOrder) RecalculateTotals() {
	gross := decimal.Zero
	discount := decimal.Zero
	for i := range o.Lines {
		gross = gross.Add(o.Lines[i].Qty.Decimal().Mul(o.Lines[i].UnitPrice))
		discount = discount.Add(o.Lines[i].DiscountAmount)
	}
	o.Subtotal = types.RoundMoney(gross)
	o.DiscountTotal = types.RoundMoney(discount)
	o.GrandTotal = o.Subtotal.Sub(o.DiscountTotal)
}

// Confirm moves a draft order to confirmed.
func (o *SalesOrder) Confirm() error {
	if o.Status != StatusDraft {
		return apperror.NewIllegalState("only draft orders can be confirmed").
			WithDetail("status", string(o.Status))
	}
	o.Status = StatusConfirmed
	return nil
}

// Fulfill marks a confirmed order as fulfilled.
func (o *SalesOrder) Fulfill() error {
	if o.Status != StatusConfirmed {
		return apperror.NewIllegalState("only confirmed orders can be fulfilled").
			WithDetail("status", string(o.Status))
	}
	o.Status = StatusFulfilled
	return nil
}

// Cancel marks the order terminal. Fulfilled orders cannot be cancelled.
func (o *SalesOrder) Cancel() error {
	if o.Status == StatusFulfilled || o.Status == StatusCancelled {
		return apperror.NewIllegalState("order cannot be cancelled").
			WithDetail("status", string(o.Status))
	}
	o.Status = StatusCancelled
	return nil
}

// CanModify reports whether lines may still change.
func (o *SalesOrder) CanModify() error {
	if o.Status == StatusFulfilled || o.Status == StatusCancelled {
		return apperror.NewIllegalState("order is no longer editable").
			WithDetail("status", string(o.Status))
	}
	return nil
}

// Validate implements entity.Validatable.
func (o *SalesOrder) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(o.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if len(o.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Qty.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.DiscountAmount.IsNegative() || line.Amount().IsNegative() {
			return apperror.NewValidation("discount cannot exceed line amount").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
