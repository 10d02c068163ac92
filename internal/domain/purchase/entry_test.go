package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testCreateRequest(lines ...LineInput) CreateRequest {
	return CreateRequest{
		SupplierID: id.New(),
		BillDate:   testNow,
		Currency:   "USD",
		Lines:      lines,
	}
}

func lineInput(qty int64, unitCost, discount, taxPercent string) LineInput {
	return LineInput{
		ProductID:      id.New(),
		QtyOrdered:     qty,
		UnitCost:       types.MustMoney(unitCost),
		DiscountAmount: types.MustMoney(discount),
		TaxPercent:     types.MustMoney(taxPercent),
	}
}

func mustEntry(t *testing.T, req CreateRequest) *Entry {
	t.Helper()
	e, err := NewEntry(context.Background(), id.New(), req, testNow)
	require.NoError(t, err)
	return e
}

func assertMoney(t *testing.T, expected string, actual types.Money) {
	t.Helper()
	assert.True(t, types.MustMoney(expected).Equal(actual),
		"expected %s, got %s", expected, actual)
}

func TestNewEntry_Totals(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(10, "50", "0", "10")))

	assertMoney(t, "500", e.Subtotal)
	assertMoney(t, "0", e.DiscountTotal)
	assertMoney(t, "50", e.TaxTotal)
	assertMoney(t, "550", e.GrandTotal)
	assertMoney(t, "0", e.AmountPaid)
	assertMoney(t, "550", e.AmountDue)
	assert.Equal(t, StatusConfirmed, e.Status())
}

func TestNewEntry_Draft(t *testing.T) {
	req := testCreateRequest(lineInput(1, "10", "0", "0"))
	req.Draft = true

	e := mustEntry(t, req)
	assert.Equal(t, StatusDraft, e.Status())
}

func TestNewEntry_NoLines(t *testing.T) {
	_, err := NewEntry(context.Background(), id.New(), testCreateRequest(), testNow)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestNewEntry_RoundsOnce(t *testing.T) {
	// Three lines of 0.335 each: summed at full precision the subtotal is
	// 1.005, rounded once to 1.00. Per-line rounding would give 1.02.
	e := mustEntry(t, testCreateRequest(
		lineInput(1, "0.335", "0", "0"),
		lineInput(1, "0.335", "0", "0"),
		lineInput(1, "0.335", "0", "0"),
	))

	assert.Equal(t, "1.00", e.Subtotal.StringFixed(2))
	assert.Equal(t, "1.00", e.GrandTotal.StringFixed(2))
}

func TestEntry_FullLifecycycleScenario(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(10, "50", "0", "10")))
	assertMoney(t, "550", e.GrandTotal)

	// Receive 6 of 10.
	require.NoError(t, e.Receive(ReceiveBatch{Items: []ReceiptItem{
		{LineID: e.Lines[0].LineID, Qty: 6},
	}}, testNow))
	assert.Equal(t, StatusPartiallyReceived, e.Status())
	assert.Equal(t, "0.6", e.ReceivingRatio().String())

	// Pay 300.
	require.NoError(t, e.RecordPayment(
		NewPayment(MethodBankTransfer, types.MustMoney("300"), "", "", testNow), testNow))
	assertMoney(t, "300", e.AmountPaid)
	assertMoney(t, "250", e.AmountDue)
	assert.Equal(t, PaymentPartial, e.PaymentDimension())
	assert.Equal(t, StatusPartiallyReceived, e.Status())

	// Receive the remaining 4.
	require.NoError(t, e.Receive(ReceiveBatch{Items: []ReceiptItem{
		{LineID: e.Lines[0].LineID, Qty: 4},
	}}, testNow))
	assert.Equal(t, ReceivingFull, e.ReceivingDimension())
	assert.Equal(t, StatusReceived, e.Status())
	assert.False(t, e.IsSettled())

	// Pay the remaining 250.
	require.NoError(t, e.RecordPayment(
		NewPayment(MethodBankTransfer, types.MustMoney("250"), "", "", testNow), testNow))
	assertMoney(t, "0", e.AmountDue)
	assert.Equal(t, StatusPaid, e.Status())
	assert.True(t, e.IsSettled())
}

func TestReceive_AllOrNothing(t *testing.T) {
	e := mustEntry(t, testCreateRequest(
		lineInput(10, "50", "0", "10"),
		lineInput(5, "20", "0", "0"),
	))

	err := e.Receive(ReceiveBatch{Items: []ReceiptItem{
		{LineID: e.Lines[0].LineID, Qty: 3},
		{LineID: e.Lines[1].LineID, Qty: 6}, // overshoots 5 ordered
	}}, testNow)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverReceipt))

	// Nothing was applied, including the valid first item.
	assert.Equal(t, int64(0), e.Lines[0].QtyReceived.Int64())
	assert.Equal(t, int64(0), e.Lines[1].QtyReceived.Int64())
	assert.Equal(t, ReceivingNone, e.ReceivingDimension())
}

func TestReceive_UnknownLine(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(10, "50", "0", "10")))

	err := e.Receive(ReceiveBatch{Items: []ReceiptItem{
		{LineID: e.Lines[0].LineID, Qty: 2},
		{LineID: id.New(), Qty: 1},
	}}, testNow)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, int64(0), e.Lines[0].QtyReceived.Int64())
}

func TestReceive_DuplicateLineInBatch(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(10, "50", "0", "10")))

	// 6 + 5 for the same line exceeds the 10 ordered even though each
	// item alone would fit.
	err := e.Receive(ReceiveBatch{Items: []ReceiptItem{
		{LineID: e.Lines[0].LineID, Qty: 6},
		{LineID: e.Lines[0].LineID, Qty: 5},
	}}, testNow)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverReceipt))
	assert.Equal(t, int64(0), e.Lines[0].QtyReceived.Int64())
}

func TestReceive_OnDraft(t *testing.T) {
	req := testCreateRequest(lineInput(10, "50", "0", "10"))
	req.Draft = true
	e := mustEntry(t, req)

	err := e.Receive(ReceiveBatch{Items: []ReceiptItem{
		{LineID: e.Lines[0].LineID, Qty: 1},
	}}, testNow)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalState))
}

func TestReceive_ReplayOvershoots(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(10, "50", "0", "10")))
	batch := ReceiveBatch{Items: []ReceiptItem{{LineID: e.Lines[0].LineID, Qty: 6}}}

	require.NoError(t, e.Receive(batch, testNow))
	// Replaying the same batch is a second delta, not an idempotent
	// retry; here it overshoots and is rejected.
	err := e.Receive(batch, testNow)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverReceipt))
	assert.Equal(t, int64(6), e.Lines[0].QtyReceived.Int64())
}

func TestRecordPayment_Overpayment(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(10, "50", "0", "10")))

	err := e.RecordPayment(
		NewPayment(MethodCash, types.MustMoney("550.01"), "", "", testNow), testNow)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverpayment))

	// Rejection leaves the aggregate untouched.
	assertMoney(t, "0", e.AmountPaid)
	assertMoney(t, "550", e.AmountDue)
	assert.Empty(t, e.Payments)
}

func TestRecordPayment_NonPositive(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(10, "50", "0", "10")))

	for _, amount := range []string{"0", "-10"} {
		err := e.RecordPayment(
			NewPayment(MethodCash, types.MustMoney(amount), "", "", testNow), testNow)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	}
	assert.Empty(t, e.Payments)
}

func TestRecordPayment_SubCentRejected(t *testing.T) {
	// An amount that rounds to 0.00 must fail validation, not land as a
	// recorded zero payment.
	e := mustEntry(t, testCreateRequest(lineInput(10, "50", "0", "10")))

	err := e.RecordPayment(
		NewPayment(MethodCash, types.MustMoney("0.004"), "", "", testNow), testNow)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Empty(t, e.Payments)
	assertMoney(t, "0", e.AmountPaid)
}

func TestRecordPayment_SumsAllPayments(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(10, "50", "0", "10")))

	for _, amount := range []string{"100.25", "200.50", "249.25"} {
		require.NoError(t, e.RecordPayment(
			NewPayment(MethodCard, types.MustMoney(amount), "", "", testNow), testNow))
	}

	assertMoney(t, "550", e.AmountPaid)
	assertMoney(t, "0", e.AmountDue)
	assert.Len(t, e.Payments, 3)
	assert.Equal(t, PaymentPaid, e.PaymentDimension())
}

func TestRecordPayment_OnDraftAllowed(t *testing.T) {
	// Prepayment against a draft bill is accepted; the display label
	// stays DRAFT by precedence.
	req := testCreateRequest(lineInput(10, "50", "0", "10"))
	req.Draft = true
	e := mustEntry(t, req)

	require.NoError(t, e.RecordPayment(
		NewPayment(MethodCash, types.MustMoney("100"), "", "", testNow), testNow))
	assert.Equal(t, StatusDraft, e.Status())
	assertMoney(t, "450", e.AmountDue)
}

func TestApplyLineChanges_ImmutableLine(t *testing.T) {
	e := mustEntry(t, testCreateRequest(
		lineInput(10, "50", "0", "10"),
		lineInput(5, "20", "0", "0"),
	))
	touched := e.Lines[0].LineID
	require.NoError(t, e.Receive(ReceiveBatch{Items: []ReceiptItem{
		{LineID: touched, Qty: 2},
	}}, testNow))

	update := LineChanges{Upsert: []LineUpdate{{
		LineID:    &touched,
		LineInput: lineInput(20, "45", "0", "10"),
	}}}
	err := e.ApplyLineChanges(context.Background(), update, testNow)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeImmutableLine))

	remove := LineChanges{Remove: []id.ID{touched}}
	err = e.ApplyLineChanges(context.Background(), remove, testNow)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeImmutableLine))

	// The untouched sibling line is still editable.
	other := e.Lines[1].LineID
	ok := LineChanges{Upsert: []LineUpdate{{
		LineID:    &other,
		LineInput: lineInput(8, "20", "0", "0"),
	}}}
	require.NoError(t, e.ApplyLineChanges(context.Background(), ok, testNow))
	assert.Equal(t, int64(8), e.Lines[1].QtyOrdered.Int64())
}

func TestApplyLineChanges_InsertAndRemove(t *testing.T) {
	e := mustEntry(t, testCreateRequest(
		lineInput(10, "50", "0", "10"),
		lineInput(5, "20", "0", "0"),
	))
	removed := e.Lines[1].LineID

	changes := LineChanges{
		Remove: []id.ID{removed},
		Upsert: []LineUpdate{{LineInput: lineInput(2, "100", "0", "0")}},
	}
	require.NoError(t, e.ApplyLineChanges(context.Background(), changes, testNow))

	require.Len(t, e.Lines, 2)
	assert.Equal(t, 1, e.Lines[0].LineNo)
	assert.Equal(t, 2, e.Lines[1].LineNo)
	// 10*50*1.1 + 2*100 = 550 + 200
	assertMoney(t, "750", e.GrandTotal)
}

func TestApplyLineChanges_BelowAmountPaid(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(10, "50", "0", "10")))
	require.NoError(t, e.RecordPayment(
		NewPayment(MethodCash, types.MustMoney("500"), "", "", testNow), testNow))

	shrink := LineChanges{Upsert: []LineUpdate{{
		LineID:    &e.Lines[0].LineID,
		LineInput: lineInput(1, "50", "0", "10"),
	}}}
	err := e.ApplyLineChanges(context.Background(), shrink, testNow)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalState))

	// Totals were restored, not left half-applied.
	assertMoney(t, "550", e.GrandTotal)
	assertMoney(t, "50", e.AmountDue)
	assert.Equal(t, int64(10), e.Lines[0].QtyOrdered.Int64())
}

func TestCancel(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(10, "50", "0", "10")))
	require.NoError(t, e.Cancel(testNow))
	assert.Equal(t, StatusCancelled, e.Status())

	// Terminal: nothing mutates a cancelled entry.
	err := e.Receive(ReceiveBatch{Items: []ReceiptItem{
		{LineID: e.Lines[0].LineID, Qty: 1},
	}}, testNow)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalState))

	err = e.RecordPayment(
		NewPayment(MethodCash, types.MustMoney("1"), "", "", testNow), testNow)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalState))

	err = e.ApplyLineChanges(context.Background(), LineChanges{}, testNow)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalState))

	err = e.Cancel(testNow)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalState))
}

func TestCancel_SettledRejected(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(2, "10", "0", "0")))
	require.NoError(t, e.Receive(ReceiveBatch{Items: []ReceiptItem{
		{LineID: e.Lines[0].LineID, Qty: 2},
	}}, testNow))
	require.NoError(t, e.RecordPayment(
		NewPayment(MethodCash, types.MustMoney("20"), "", "", testNow), testNow))
	require.True(t, e.IsSettled())

	err := e.Cancel(testNow)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalState))
}

func TestConfirm(t *testing.T) {
	req := testCreateRequest(lineInput(1, "10", "0", "0"))
	req.Draft = true
	e := mustEntry(t, req)

	require.NoError(t, e.Confirm(testNow))
	assert.Equal(t, StatusConfirmed, e.Status())

	err := e.Confirm(testNow)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalState))
}

func TestStatusPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		draft     bool
		cancelled bool
		r         ReceivingState
		p         PaymentState
		want      Status
	}{
		{"cancelled wins over everything", false, true, ReceivingFull, PaymentPaid, StatusCancelled},
		{"draft wins over payment", true, false, ReceivingNone, PaymentPartial, StatusDraft},
		{"paid only when both dimensions complete", false, false, ReceivingFull, PaymentPaid, StatusPaid},
		{"received over partial payment", false, false, ReceivingFull, PaymentPartial, StatusReceived},
		{"partially received over partial payment", false, false, ReceivingPartial, PaymentPartial, StatusPartiallyReceived},
		{"prepaid but half received shows receiving", false, false, ReceivingPartial, PaymentPaid, StatusPartiallyReceived},
		{"partially paid when nothing received", false, false, ReceivingNone, PaymentPartial, StatusPartiallyPaid},
		{"prepaid before any receipt shows payment", false, false, ReceivingNone, PaymentPaid, StatusPartiallyPaid},
		{"confirmed baseline", false, false, ReceivingNone, PaymentUnpaid, StatusConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveStatus(tt.draft, tt.cancelled, tt.r, tt.p))
		})
	}
}

func TestQtyReceivedMonotone(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(100, "1", "0", "0")))
	lineID := e.Lines[0].LineID

	prev := int64(0)
	for _, qty := range []int64{10, 200, 30, -5, 60, 80, 0} {
		_ = e.Receive(ReceiveBatch{Items: []ReceiptItem{{LineID: lineID, Qty: qty}}}, testNow)
		got := e.Lines[0].QtyReceived.Int64()
		assert.GreaterOrEqual(t, got, prev)
		assert.LessOrEqual(t, got, int64(100))
		prev = got
	}
}

func TestEntryEvents(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(10, "50", "0", "10")))

	events := e.DrainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventCreated, events[0].Type)
	assert.Equal(t, e.ID, events[0].EntryID)
	assert.Equal(t, e.CompanyID, events[0].TenantID)
	assert.Empty(t, e.Events())

	require.NoError(t, e.Receive(ReceiveBatch{Items: []ReceiptItem{
		{LineID: e.Lines[0].LineID, Qty: 10},
	}}, testNow))
	require.NoError(t, e.RecordPayment(
		NewPayment(MethodCash, types.MustMoney("550"), "", "", testNow), testNow))

	events = e.DrainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventReceived, events[0].Type)
	assert.Equal(t, true, events[0].Payload["fullyReceived"])
	assert.Equal(t, EventPaymentRecorded, events[1].Type)
	assert.Equal(t, true, events[1].Payload["fullyPaid"])
}

func TestEntryValidate(t *testing.T) {
	e := mustEntry(t, testCreateRequest(lineInput(1, "10", "0", "0")))
	require.NoError(t, e.Validate(context.Background()))

	e.SupplierID = id.Nil()
	err := e.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
