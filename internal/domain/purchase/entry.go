// Package purchase implements the purchase entry lifecycle: a financial
// document created in stages (order, partial receiving, payment) whose
// totals are always re-derived from its lines and payments.
package purchase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/entity"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

// Entry is the purchase entry aggregate. It owns its lines and payments;
// every mutating operation validates, mutates and recomputes all derived
// totals before returning, so the persisted snapshot is always internally
// consistent. No derived total is ever patched incrementally.
type Entry struct {
	entity.Document

	SupplierID  id.ID      `db:"supplier_id" json:"supplierId"`
	BillDate    time.Time  `db:"bill_date" json:"billDate"`
	DueDate     *time.Time `db:"due_date" json:"dueDate,omitempty"`
	ReferenceNo string     `db:"reference_no" json:"referenceNo,omitempty"`
	Currency    string     `db:"currency" json:"currency"`

	// Internal state flags. The display status is derived, never stored
	// as the source of truth.
	Draft     bool `db:"draft" json:"draft"`
	Cancelled bool `db:"cancelled" json:"cancelled"`

	// Derived totals, recomputed on every mutation and rounded at this
	// boundary only.
	Subtotal        types.Money `db:"subtotal" json:"subtotal"`
	DiscountTotal   types.Money `db:"discount_total" json:"discountTotal"`
	TaxTotal        types.Money `db:"tax_total" json:"taxTotal"`
	SupplierExpense types.Money `db:"supplier_expense" json:"supplierExpense"`
	OtherExpense    types.Money `db:"other_expense" json:"otherExpense"`
	GrandTotal      types.Money `db:"grand_total" json:"grandTotal"`
	AmountPaid      types.Money `db:"amount_paid" json:"amountPaid"`
	AmountDue       types.Money `db:"amount_due" json:"amountDue"`

	Lines    []Line    `db:"-" json:"lines"`
	Payments []Payment `db:"-" json:"payments"`

	events []Event
}

// NewEntry builds and validates a purchase entry from a create request.
// Lines get their IDs here; the document code is assigned by the service.
func NewEntry(ctx context.Context, companyID id.ID, req CreateRequest, now time.Time) (*Entry, error) {
	e := &Entry{
		Document:        entity.NewDocument(companyID, now),
		SupplierID:      req.SupplierID,
		BillDate:        req.BillDate,
		DueDate:         req.DueDate,
		ReferenceNo:     req.ReferenceNo,
		Currency:        req.Currency,
		Draft:           req.Draft,
		SupplierExpense: types.RoundMoney(req.SupplierExpense),
		OtherExpense:    types.RoundMoney(req.OtherExpense),
		Lines:           make([]Line, 0, len(req.Lines)),
		Payments:        make([]Payment, 0),
	}
	e.Code = req.Code
	e.Notes = req.Notes
	if e.BillDate.IsZero() {
		e.BillDate = now.UTC()
	}
	if e.Currency == "" {
		e.Currency = "USD"
	}

	for _, in := range req.Lines {
		e.Lines = append(e.Lines, newLine(in, len(e.Lines)+1))
	}

	if err := e.Validate(ctx); err != nil {
		return nil, err
	}

	e.recalculateTotals()
	e.raise(EventCreated, now, map[string]any{
		"supplierId": e.SupplierID,
		"grandTotal": e.GrandTotal.String(),
		"draft":      e.Draft,
		"lineCount":  len(e.Lines),
	})
	return e, nil
}

func newLine(in LineInput, lineNo int) Line {
	return Line{
		LineID:         id.New(),
		LineNo:         lineNo,
		ProductID:      in.ProductID,
		Description:    in.Description,
		QtyOrdered:     types.NewQuantity(in.QtyOrdered),
		UnitCost:       in.UnitCost,
		DiscountAmount: in.DiscountAmount,
		TaxPercent:     in.TaxPercent,
	}
}

// Validate implements entity.Validatable.
func (e *Entry) Validate(ctx context.Context) error {
	if err := e.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(e.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if len(e.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	if e.SupplierExpense.IsNegative() {
		return apperror.NewValidation("supplier expense cannot be negative").
			WithDetail("field", "supplierExpense")
	}
	if e.OtherExpense.IsNegative() {
		return apperror.NewValidation("other expense cannot be negative").
			WithDetail("field", "otherExpense")
	}
	for i := range e.Lines {
		if err := e.Lines[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// recalculateTotals re-derives every header total from the current line
// and payment collections. Components are summed at full precision and
// rounded once; grandTotal is then exact over the rounded components:
// grandTotal = subtotal - discountTotal + taxTotal + supplierExpense +
// otherExpense.
func (e *Entry) recalculateTotals() {
	gross := decimal.Zero
	discount := decimal.Zero
	tax := decimal.Zero
	for i := range e.Lines {
		gross = gross.Add(e.Lines[i].GrossAmount())
		discount = discount.Add(e.Lines[i].DiscountAmount)
		tax = tax.Add(e.Lines[i].TaxAmount())
	}

	e.Subtotal = types.RoundMoney(gross)
	e.DiscountTotal = types.RoundMoney(discount)
	e.TaxTotal = types.RoundMoney(tax)
	e.GrandTotal = e.Subtotal.
		Sub(e.DiscountTotal).
		Add(e.TaxTotal).
		Add(e.SupplierExpense).
		Add(e.OtherExpense)

	paid := decimal.Zero
	for i := range e.Payments {
		paid = paid.Add(e.Payments[i].Amount)
	}
	e.AmountPaid = types.RoundMoney(paid)
	e.AmountDue = e.GrandTotal.Sub(e.AmountPaid)
}

// --- Derived state ---

// ReceivingDimension reports goods arrival progress across all lines.
func (e *Entry) ReceivingDimension() ReceivingState {
	anyReceived := false
	allFull := len(e.Lines) > 0
	for i := range e.Lines {
		if e.Lines[i].QtyReceived.IsPositive() {
			anyReceived = true
		}
		if !e.Lines[i].FullyReceived() {
			allFull = false
		}
	}
	switch {
	case allFull:
		return ReceivingFull
	case anyReceived:
		return ReceivingPartial
	default:
		return ReceivingNone
	}
}

// PaymentDimension reports settlement progress.
func (e *Entry) PaymentDimension() PaymentState {
	switch {
	case e.AmountPaid.IsZero():
		return PaymentUnpaid
	case e.AmountDue.IsZero():
		return PaymentPaid
	default:
		return PaymentPartial
	}
}

// Status returns the derived display label.
func (e *Entry) Status() Status {
	return deriveStatus(e.Draft, e.Cancelled, e.ReceivingDimension(), e.PaymentDimension())
}

// IsSettled reports whether every line is fully received and nothing
// remains due. Settled entries cannot be cancelled.
func (e *Entry) IsSettled() bool {
	return e.ReceivingDimension() == ReceivingFull && e.AmountDue.IsZero()
}

// ReceivingRatio returns the aggregate receiving completion,
// sum(qtyReceived)/sum(qtyOrdered). Reporting only, never stored.
func (e *Entry) ReceivingRatio() decimal.Decimal {
	var ordered, received int64
	for i := range e.Lines {
		ordered += e.Lines[i].QtyOrdered.Int64()
		received += e.Lines[i].QtyReceived.Int64()
	}
	if ordered == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(received).Div(decimal.NewFromInt(ordered))
}

func (e *Entry) findLine(lineID id.ID) *Line {
	for i := range e.Lines {
		if e.Lines[i].LineID == lineID {
			return &e.Lines[i]
		}
	}
	return nil
}

// --- Mutations ---

// Confirm moves a draft entry into the confirmed state.
func (e *Entry) Confirm(now time.Time) error {
	if e.Cancelled {
		return apperror.NewIllegalState("cancelled entry cannot be confirmed")
	}
	if !e.Draft {
		return apperror.NewIllegalState("entry is already confirmed")
	}
	e.Draft = false
	e.raise(EventConfirmed, now, nil)
	return nil
}

// ApplyLineChanges replaces, inserts and removes lines, then re-derives
// all header totals. Lines with received quantity are immutable; changes
// that would drop the grand total below the amount already paid are
// rejected.
func (e *Entry) ApplyLineChanges(ctx context.Context, changes LineChanges, now time.Time) error {
	if e.Cancelled {
		return apperror.NewIllegalState("cancelled entry cannot be modified")
	}
	if e.ReceivingDimension() == ReceivingFull {
		return apperror.NewIllegalState("fully received entry cannot be modified")
	}

	// Validate every change before touching anything.
	for _, lineID := range changes.Remove {
		line := e.findLine(lineID)
		if line == nil {
			return apperror.NewNotFound("purchase line", lineID)
		}
		if line.QtyReceived.IsPositive() {
			return apperror.NewImmutableLine(lineID.String())
		}
	}
	for _, up := range changes.Upsert {
		if up.LineID == nil {
			continue
		}
		line := e.findLine(*up.LineID)
		if line == nil {
			return apperror.NewNotFound("purchase line", *up.LineID)
		}
		if line.QtyReceived.IsPositive() {
			return apperror.NewImmutableLine(up.LineID.String())
		}
	}

	next := make([]Line, 0, len(e.Lines)+len(changes.Upsert))
	removed := make(map[id.ID]bool, len(changes.Remove))
	for _, lineID := range changes.Remove {
		removed[lineID] = true
	}
	replaced := make(map[id.ID]LineInput, len(changes.Upsert))
	for _, up := range changes.Upsert {
		if up.LineID != nil {
			replaced[*up.LineID] = up.LineInput
		}
	}

	for i := range e.Lines {
		line := e.Lines[i]
		if removed[line.LineID] {
			continue
		}
		if in, ok := replaced[line.LineID]; ok {
			line.ProductID = in.ProductID
			line.Description = in.Description
			line.QtyOrdered = types.NewQuantity(in.QtyOrdered)
			line.UnitCost = in.UnitCost
			line.DiscountAmount = in.DiscountAmount
			line.TaxPercent = in.TaxPercent
		}
		line.LineNo = len(next) + 1
		next = append(next, line)
	}
	for _, up := range changes.Upsert {
		if up.LineID != nil {
			continue
		}
		next = append(next, newLine(up.LineInput, len(next)+1))
	}

	prevLines := e.Lines
	prevSupplierExpense := e.SupplierExpense
	prevOtherExpense := e.OtherExpense

	e.Lines = next
	if changes.SupplierExpense != nil {
		e.SupplierExpense = types.RoundMoney(*changes.SupplierExpense)
	}
	if changes.OtherExpense != nil {
		e.OtherExpense = types.RoundMoney(*changes.OtherExpense)
	}

	restore := func() {
		e.Lines = prevLines
		e.SupplierExpense = prevSupplierExpense
		e.OtherExpense = prevOtherExpense
	}

	if err := e.Validate(ctx); err != nil {
		restore()
		return err
	}

	e.recalculateTotals()
	if e.AmountDue.IsNegative() {
		restore()
		e.recalculateTotals()
		return apperror.NewIllegalState("line changes would drop the total below the amount already paid").
			WithDetail("amountPaid", e.AmountPaid.String())
	}

	e.raise(EventLinesUpdated, now, map[string]any{
		"lineCount":  len(e.Lines),
		"grandTotal": e.GrandTotal.String(),
	})
	return nil
}

// Receive applies a batch of (line, quantity) receipts. Every item is
// validated before any line is touched; any unknown line or overshoot
// aborts the whole batch with no partial effect.
func (e *Entry) Receive(batch ReceiveBatch, now time.Time) error {
	if e.Cancelled {
		return apperror.NewIllegalState("cancelled entry cannot receive goods")
	}
	if e.Draft {
		return apperror.NewIllegalState("draft entry must be confirmed before receiving")
	}
	if len(batch.Items) == 0 {
		return apperror.NewValidation("receive batch is empty").
			WithDetail("field", "items")
	}

	// The same line may appear more than once; the combined quantity is
	// what must fit.
	requested := make(map[id.ID]types.Quantity, len(batch.Items))
	for _, item := range batch.Items {
		qty := types.NewQuantity(item.Qty)
		if !qty.IsPositive() {
			return apperror.NewValidation("receipt quantity must be positive").
				WithDetail("lineId", item.LineID).
				WithDetail("qty", item.Qty)
		}
		requested[item.LineID] = requested[item.LineID].Add(qty)
	}
	for lineID, qty := range requested {
		line := e.findLine(lineID)
		if line == nil {
			return apperror.NewNotFound("purchase line", lineID)
		}
		if err := line.CheckReceipt(qty); err != nil {
			return err
		}
	}

	for lineID, qty := range requested {
		// Cannot fail: every pair was checked above.
		if _, err := e.findLine(lineID).ApplyReceipt(qty); err != nil {
			return err
		}
	}

	e.recalculateTotals()
	e.raise(EventReceived, now, map[string]any{
		"fullyReceived":  e.ReceivingDimension() == ReceivingFull,
		"receivingRatio": e.ReceivingRatio().StringFixed(4),
		"lineCount":      len(requested),
	})
	return nil
}

// RecordPayment appends a payment against the outstanding balance.
// Amounts exceeding amountDue are rejected, never capped.
func (e *Entry) RecordPayment(p Payment, now time.Time) error {
	if e.Cancelled {
		return apperror.NewIllegalState("cancelled entry cannot accept payments")
	}
	// Round first: a sub-cent amount must fail the positivity check, not
	// slip through as a recorded zero payment.
	p.Amount = types.RoundMoney(p.Amount)
	if err := p.Validate(); err != nil {
		return err
	}

	if p.Amount.GreaterThan(e.AmountDue) {
		return apperror.NewOverpayment(p.Amount.String(), e.AmountDue.String())
	}

	e.Payments = append(e.Payments, p)
	e.recalculateTotals()
	e.raise(EventPaymentRecorded, now, map[string]any{
		"paymentId": p.PaymentID,
		"amount":    p.Amount.String(),
		"fullyPaid": e.PaymentDimension() == PaymentPaid,
		"amountDue": e.AmountDue.String(),
	})
	return nil
}

// Cancel marks the entry terminal. Fully settled entries cannot be
// cancelled; additional per-tenant policy is enforced at the service.
func (e *Entry) Cancel(now time.Time) error {
	if e.Cancelled {
		return apperror.NewIllegalState("entry is already cancelled")
	}
	if e.IsSettled() {
		return apperror.NewIllegalState("fully received and paid entry cannot be cancelled")
	}
	e.Cancelled = true
	e.raise(EventCancelled, now, map[string]any{
		"amountPaid": e.AmountPaid.String(),
	})
	return nil
}

// --- Events ---

func (e *Entry) raise(eventType string, now time.Time, payload map[string]any) {
	e.events = append(e.events, Event{
		Type:       eventType,
		EntryID:    e.ID,
		TenantID:   e.CompanyID,
		OccurredAt: now.UTC(),
		Payload:    payload,
	})
}

// Events returns the domain events raised since the last drain.
func (e *Entry) Events() []Event {
	return e.events
}

// DrainEvents returns and clears pending events.
func (e *Entry) DrainEvents() []Event {
	evts := e.events
	e.events = nil
	return evts
}
