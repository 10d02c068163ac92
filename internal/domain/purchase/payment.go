package purchase

import (
	"time"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

// Payment methods.
const (
	MethodCash         = "CASH"
	MethodCard         = "CARD"
	MethodBankTransfer = "BANK_TRANSFER"
	MethodCheck        = "CHECK"
	MethodOther        = "OTHER"
)

// Payment is one payment application against a purchase entry.
// Append-only: once recorded it is never mutated or deleted.
type Payment struct {
	PaymentID id.ID     `db:"payment_id" json:"paymentId"`
	PaidAt    time.Time `db:"paid_at" json:"paidAt"`

	Method    string      `db:"method" json:"method"`
	Amount    types.Money `db:"amount" json:"amount"`
	Reference string      `db:"reference" json:"reference,omitempty"`
	Note      string      `db:"note" json:"note,omitempty"`
}

// NewPayment builds a payment record. PaidAt comes from the injected
// clock at the service layer, never from a global read.
func NewPayment(method string, amount types.Money, reference, note string, paidAt time.Time) Payment {
	return Payment{
		PaymentID: id.New(),
		PaidAt:    paidAt.UTC(),
		Method:    method,
		Amount:    amount,
		Reference: reference,
		Note:      note,
	}
}

// Validate checks payment invariants.
func (p *Payment) Validate() error {
	if p.Method == "" {
		return apperror.NewValidation("payment method is required").
			WithDetail("field", "method")
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount").
			WithDetail("amount", p.Amount.String())
	}
	if p.PaidAt.IsZero() {
		return apperror.NewValidation("payment time is required").
			WithDetail("field", "paidAt")
	}
	return nil
}
