package purchase

import (
	"github.com/shopspring/decimal"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

// Line is one ordered product position on a purchase entry.
// QtyReceived is mutated only through ApplyReceipt; everything else is
// frozen once receiving has started on the line.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID   id.ID  `db:"product_id" json:"productId"`
	Description string `db:"description" json:"description,omitempty"`

	QtyOrdered  types.Quantity `db:"qty_ordered" json:"qtyOrdered"`
	QtyReceived types.Quantity `db:"qty_received" json:"qtyReceived"`

	UnitCost       types.Money `db:"unit_cost" json:"unitCost"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TaxPercent     types.Money `db:"tax_percent" json:"taxPercent"`
}

// Validate checks the line invariants.
func (l *Line) Validate() error {
	if id.IsNil(l.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId").
			WithDetail("lineNo", l.LineNo)
	}
	if !l.QtyOrdered.IsPositive() {
		return apperror.NewValidation("ordered quantity must be positive").
			WithDetail("field", "qtyOrdered").
			WithDetail("lineNo", l.LineNo)
	}
	if l.QtyReceived.IsNegative() {
		return apperror.NewValidation("received quantity cannot be negative").
			WithDetail("field", "qtyReceived").
			WithDetail("lineNo", l.LineNo)
	}
	if l.QtyReceived > l.QtyOrdered {
		return apperror.NewValidation("received quantity cannot exceed ordered quantity").
			WithDetail("field", "qtyReceived").
			WithDetail("lineNo", l.LineNo)
	}
	if l.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost").
			WithDetail("lineNo", l.LineNo)
	}
	if l.DiscountAmount.IsNegative() {
		return apperror.NewValidation("discount cannot be negative").
			WithDetail("field", "discountAmount").
			WithDetail("lineNo", l.LineNo)
	}
	if l.DiscountAmount.GreaterThan(l.GrossAmount()) {
		return apperror.NewValidation("discount cannot exceed line amount").
			WithDetail("field", "discountAmount").
			WithDetail("lineNo", l.LineNo)
	}
	if l.TaxPercent.IsNegative() || l.TaxPercent.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.NewValidation("tax percent must be between 0 and 100").
			WithDetail("field", "taxPercent").
			WithDetail("lineNo", l.LineNo)
	}
	return nil
}

// GrossAmount returns qtyOrdered * unitCost at full precision.
func (l *Line) GrossAmount() types.Money {
	return l.QtyOrdered.Decimal().Mul(l.UnitCost)
}

// NetAmount returns the line amount after discount, before tax.
func (l *Line) NetAmount() types.Money {
	return l.GrossAmount().Sub(l.DiscountAmount)
}

// TaxAmount returns the tax charged on the discounted amount.
func (l *Line) TaxAmount() types.Money {
	return l.NetAmount().Mul(l.TaxPercent).Div(decimal.NewFromInt(100))
}

// Total returns (qtyOrdered*unitCost - discount) * (1 + taxPercent/100)
// at full precision. Rounding happens at the aggregate edge only.
func (l *Line) Total() types.Money {
	return types.ApplyPercent(l.NetAmount(), l.TaxPercent)
}

// Remaining returns the quantity still expected against this line.
func (l *Line) Remaining() types.Quantity {
	return l.QtyOrdered.Sub(l.QtyReceived)
}

// FullyReceived reports whether the line has no outstanding quantity.
func (l *Line) FullyReceived() bool {
	return l.QtyReceived == l.QtyOrdered
}

// CompletionRatio returns qtyReceived/qtyOrdered for reporting.
func (l *Line) CompletionRatio() decimal.Decimal {
	if l.QtyOrdered.IsZero() {
		return decimal.Zero
	}
	return l.QtyReceived.Decimal().Div(l.QtyOrdered.Decimal())
}

// CheckReceipt validates a prospective receipt without applying it.
func (l *Line) CheckReceipt(qty types.Quantity) error {
	if !qty.IsPositive() {
		return apperror.NewValidation("receipt quantity must be positive").
			WithDetail("lineId", l.LineID).
			WithDetail("qty", qty.Int64())
	}
	if remaining := l.Remaining(); qty > remaining {
		return apperror.NewOverReceipt(l.LineID.String(), qty.Int64(), remaining.Int64())
	}
	return nil
}

// ApplyReceipt records arrived quantity against the line and returns the
// new per-line completion ratio. qtyReceived never exceeds qtyOrdered.
func (l *Line) ApplyReceipt(qty types.Quantity) (decimal.Decimal, error) {
	if err := l.CheckReceipt(qty); err != nil {
		return decimal.Zero, err
	}
	l.QtyReceived = l.QtyReceived.Add(qty)
	return l.CompletionRatio(), nil
}
