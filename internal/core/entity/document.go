package entity

import (
	"context"
	"time"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
)

// Document is the base type for business transactions.
// Examples: PurchaseEntry, SalesOrder, InventoryCount.
type Document struct {
	BaseDocument

	// Code is the document number (auto-generated, unique per tenant,
	// case-insensitive)
	Code string `db:"code" json:"code"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Notes is an optional user comment
	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewDocument creates a new Document owned by the given company.
func NewDocument(companyID id.ID, now time.Time) Document {
	return Document{
		BaseDocument: NewBaseDocument(companyID, now),
		Date:         now.UTC(),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}
