// Package supplier provides the Supplier catalog.
// Suppliers are the selling side of purchase entries.
package supplier

import (
	"context"
	"regexp"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/entity"
	"retailcore/internal/core/id"
)

var (
	emailRE      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	digitsOnlyRE = regexp.MustCompile(`^\d+$`)
	whitespaceRE = regexp.MustCompile(`\s`)
)

// Supplier represents a vendor within a tenant.
type Supplier struct {
	entity.Catalog

	// TaxID is the supplier's tax identification number,
	// unique within the tenant when set.
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// Contact data
	Email         *string `db:"email" json:"email,omitempty"`
	Phone         *string `db:"phone" json:"phone,omitempty"`
	Address       *string `db:"address" json:"address,omitempty"`
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// PaymentTermsDays is the agreed payment window, used to default the
	// due date on purchase entries.
	PaymentTermsDays int `db:"payment_terms_days" json:"paymentTermsDays"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewSupplier creates a new Supplier with required fields.
func NewSupplier(companyID id.ID, code, name string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(companyID, code, name),
	}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if s.TaxID != nil && *s.TaxID != "" {
		cleaned := whitespaceRE.ReplaceAllString(*s.TaxID, "")
		if !digitsOnlyRE.MatchString(cleaned) {
			return apperror.NewValidation("tax id must contain only digits").
				WithDetail("field", "taxId")
		}
	}

	if s.Email != nil && *s.Email != "" && !emailRE.MatchString(*s.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if s.PaymentTermsDays < 0 {
		return apperror.NewValidation("payment terms cannot be negative").
			WithDetail("field", "paymentTermsDays")
	}

	return nil
}
