package purchase

// ReceivingState tracks goods arrival progress, derived from line quantities.
type ReceivingState string

const (
	ReceivingNone    ReceivingState = "NONE"
	ReceivingPartial ReceivingState = "PARTIAL"
	ReceivingFull    ReceivingState = "FULL"
)

// PaymentState tracks settlement progress, derived from recorded payments.
type PaymentState string

const (
	PaymentUnpaid  PaymentState = "UNPAID"
	PaymentPartial PaymentState = "PARTIAL"
	PaymentPaid    PaymentState = "PAID"
)

// Status is the single display label exposed on the entry. It collapses the
// two internal dimensions plus the draft and cancelled flags by precedence:
// CANCELLED > DRAFT > PAID (both dimensions complete) > RECEIVED >
// PARTIALLY_RECEIVED > PARTIALLY_PAID > CONFIRMED. While goods are
// outstanding the receiving dimension is reported, so a fully prepaid
// half-received entry still shows PARTIALLY_RECEIVED.
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusConfirmed         Status = "CONFIRMED"
	StatusPartiallyReceived Status = "PARTIALLY_RECEIVED"
	StatusReceived          Status = "RECEIVED"
	StatusPartiallyPaid     Status = "PARTIALLY_PAID"
	StatusPaid              Status = "PAID"
	StatusCancelled         Status = "CANCELLED"
)

// deriveStatus collapses the internal state into the display label.
func deriveStatus(draft, cancelled bool, r ReceivingState, p PaymentState) Status {
	switch {
	case cancelled:
		return StatusCancelled
	case draft:
		return StatusDraft
	case p == PaymentPaid && r == ReceivingFull:
		return StatusPaid
	case r == ReceivingFull:
		return StatusReceived
	case r == ReceivingPartial:
		return StatusPartiallyReceived
	case p != PaymentUnpaid:
		return StatusPartiallyPaid
	default:
		return StatusConfirmed
	}
}
