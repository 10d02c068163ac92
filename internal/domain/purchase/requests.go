package purchase

import (
	"time"

	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

// LineInput describes one line supplied by the caller. Line IDs are
// assigned by the aggregate, never by the caller.
type LineInput struct {
	ProductID      id.ID
	Description    string
	QtyOrdered     int64
	UnitCost       types.Money
	DiscountAmount types.Money
	TaxPercent     types.Money
}

// PaymentRequest describes one payment application.
type PaymentRequest struct {
	Method    string
	Amount    types.Money
	Reference string
	Note      string
}

// CreateRequest carries everything needed to create a purchase entry.
type CreateRequest struct {
	SupplierID  id.ID
	BillDate    time.Time
	DueDate     *time.Time
	ReferenceNo string
	Notes       string
	Currency    string

	// Code overrides auto-numbering when set. Unique per tenant,
	// case-insensitive.
	Code string

	// Draft keeps the entry editable without ordering intent.
	Draft bool

	SupplierExpense types.Money
	OtherExpense    types.Money

	Lines []LineInput

	// InitialPayment is applied right after creation when set.
	InitialPayment *PaymentRequest
}

// LineUpdate upserts one line. A nil LineID inserts a new line; a set
// LineID replaces the line's attributes.
type LineUpdate struct {
	LineID *id.ID
	LineInput
}

// LineChanges describes an updateLines operation. Lines referenced by
// Remove or replaced by Upsert must not have any received quantity.
type LineChanges struct {
	Upsert []LineUpdate
	Remove []id.ID

	// Optional header expense adjustments; nil leaves the value as is.
	SupplierExpense *types.Money
	OtherExpense    *types.Money
}

// ReceiptItem is one (line, quantity) pair of a receive batch.
type ReceiptItem struct {
	LineID id.ID
	Qty    int64
}

// ReceiveBatch applies arrived quantities to lines. All items are
// validated before any is applied; the batch is all-or-nothing.
type ReceiveBatch struct {
	Items []ReceiptItem
}
