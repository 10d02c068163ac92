package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/domain/purchase"
)

// --- Request DTOs ---

// PurchaseLineRequest describes one line of a purchase entry.
type PurchaseLineRequest struct {
	ProductID      string          `json:"productId" binding:"required"`
	Description    string          `json:"description"`
	QtyOrdered     int64           `json:"qtyOrdered" binding:"required,min=1"`
	UnitCost       decimal.Decimal `json:"unitCost"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxPercent     decimal.Decimal `json:"taxPercent"`
}

func (r *PurchaseLineRequest) toInput() (purchase.LineInput, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return purchase.LineInput{}, apperror.NewValidation("invalid product id").
			WithDetail("productId", r.ProductID)
	}
	return purchase.LineInput{
		ProductID:      productID,
		Description:    r.Description,
		QtyOrdered:     r.QtyOrdered,
		UnitCost:       r.UnitCost,
		DiscountAmount: r.DiscountAmount,
		TaxPercent:     r.TaxPercent,
	}, nil
}

// PurchasePaymentRequest describes one payment application.
type PurchasePaymentRequest struct {
	Method    string          `json:"method" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reference string          `json:"reference"`
	Note      string          `json:"note"`
}

func (r *PurchasePaymentRequest) toRequest() purchase.PaymentRequest {
	return purchase.PaymentRequest{
		Method:    r.Method,
		Amount:    r.Amount,
		Reference: r.Reference,
		Note:      r.Note,
	}
}

// CreatePurchaseEntryRequest is the request body for creating an entry.
type CreatePurchaseEntryRequest struct {
	SupplierID  string     `json:"supplierId" binding:"required"`
	BillDate    *time.Time `json:"billDate"`
	DueDate     *time.Time `json:"dueDate"`
	ReferenceNo string     `json:"referenceNo"`
	Notes       string     `json:"notes"`
	Currency    string     `json:"currency"`
	Code        string     `json:"code"`
	Draft       bool       `json:"draft"`

	SupplierExpense decimal.Decimal `json:"supplierExpense"`
	OtherExpense    decimal.Decimal `json:"otherExpense"`

	Lines []PurchaseLineRequest `json:"lines" binding:"required,min=1"`

	InitialPayment *PurchasePaymentRequest `json:"initialPayment"`
}

// ToCreateRequest converts the DTO to a domain create request.
func (r *CreatePurchaseEntryRequest) ToCreateRequest() (purchase.CreateRequest, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return purchase.CreateRequest{}, apperror.NewValidation("invalid supplier id").
			WithDetail("supplierId", r.SupplierID)
	}

	req := purchase.CreateRequest{
		SupplierID:      supplierID,
		DueDate:         r.DueDate,
		ReferenceNo:     r.ReferenceNo,
		Notes:           r.Notes,
		Currency:        r.Currency,
		Code:            r.Code,
		Draft:           r.Draft,
		SupplierExpense: r.SupplierExpense,
		OtherExpense:    r.OtherExpense,
		Lines:           make([]purchase.LineInput, 0, len(r.Lines)),
	}
	if r.BillDate != nil {
		req.BillDate = *r.BillDate
	}

	for _, line := range r.Lines {
		in, err := line.toInput()
		if err != nil {
			return purchase.CreateRequest{}, err
		}
		req.Lines = append(req.Lines, in)
	}

	if r.InitialPayment != nil {
		payment := r.InitialPayment.toRequest()
		req.InitialPayment = &payment
	}
	return req, nil
}

// PurchaseLineUpdateRequest upserts one line. A missing lineId inserts a
// new line; a present one replaces the line's attributes.
type PurchaseLineUpdateRequest struct {
	LineID *string `json:"lineId"`
	PurchaseLineRequest
}

// UpdatePurchaseLinesRequest is the request body for the line update
// operation.
type UpdatePurchaseLinesRequest struct {
	Version int                         `json:"version" binding:"required,min=1"`
	Upsert  []PurchaseLineUpdateRequest `json:"upsert"`
	Remove  []string                    `json:"remove"`

	SupplierExpense *decimal.Decimal `json:"supplierExpense"`
	OtherExpense    *decimal.Decimal `json:"otherExpense"`
}

// ToLineChanges converts the DTO to domain line changes.
func (r *UpdatePurchaseLinesRequest) ToLineChanges() (purchase.LineChanges, error) {
	changes := purchase.LineChanges{
		Upsert:          make([]purchase.LineUpdate, 0, len(r.Upsert)),
		Remove:          make([]id.ID, 0, len(r.Remove)),
		SupplierExpense: r.SupplierExpense,
		OtherExpense:    r.OtherExpense,
	}

	for _, u := range r.Upsert {
		in, err := u.toInput()
		if err != nil {
			return purchase.LineChanges{}, err
		}
		update := purchase.LineUpdate{LineInput: in}
		if u.LineID != nil {
			lineID, err := id.Parse(*u.LineID)
			if err != nil {
				return purchase.LineChanges{}, apperror.NewValidation("invalid line id").
					WithDetail("lineId", *u.LineID)
			}
			update.LineID = &lineID
		}
		changes.Upsert = append(changes.Upsert, update)
	}

	for _, raw := range r.Remove {
		lineID, err := id.Parse(raw)
		if err != nil {
			return purchase.LineChanges{}, apperror.NewValidation("invalid line id").
				WithDetail("lineId", raw)
		}
		changes.Remove = append(changes.Remove, lineID)
	}
	return changes, nil
}

// ReceiveItemRequest is one (line, quantity) pair of a receive batch.
type ReceiveItemRequest struct {
	LineID string `json:"lineId" binding:"required"`
	Qty    int64  `json:"qty" binding:"required,min=1"`
}

// ReceivePurchaseRequest is the request body for the receive operation.
type ReceivePurchaseRequest struct {
	Version int                  `json:"version" binding:"required,min=1"`
	Items   []ReceiveItemRequest `json:"items" binding:"required,min=1"`
}

// ToReceiveBatch converts the DTO to a domain receive batch.
func (r *ReceivePurchaseRequest) ToReceiveBatch() (purchase.ReceiveBatch, error) {
	batch := purchase.ReceiveBatch{
		Items: make([]purchase.ReceiptItem, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		lineID, err := id.Parse(item.LineID)
		if err != nil {
			return purchase.ReceiveBatch{}, apperror.NewValidation("invalid line id").
				WithDetail("lineId", item.LineID)
		}
		batch.Items = append(batch.Items, purchase.ReceiptItem{
			LineID: lineID,
			Qty:    item.Qty,
		})
	}
	return batch, nil
}

// RecordPurchasePaymentRequest is the request body for recording a payment.
type RecordPurchasePaymentRequest struct {
	Version int `json:"version" binding:"required,min=1"`
	PurchasePaymentRequest
}

// --- Response DTOs ---

// PurchaseLineResponse is the line representation returned by the API.
type PurchaseLineResponse struct {
	LineID      string `json:"lineId"`
	LineNo      int    `json:"lineNo"`
	ProductID   string `json:"productId"`
	Description string `json:"description,omitempty"`

	QtyOrdered  int64 `json:"qtyOrdered"`
	QtyReceived int64 `json:"qtyReceived"`
	Remaining   int64 `json:"remaining"`

	UnitCost       decimal.Decimal `json:"unitCost"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxPercent     decimal.Decimal `json:"taxPercent"`

	CompletionRatio decimal.Decimal `json:"completionRatio"`
}

// PurchasePaymentResponse is the payment representation returned by the API.
type PurchasePaymentResponse struct {
	PaymentID string          `json:"paymentId"`
	PaidAt    time.Time       `json:"paidAt"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
	Note      string          `json:"note,omitempty"`
}

// PurchaseEntryResponse is the full aggregate representation. Status is
// the derived display label; the two underlying dimensions are exposed
// alongside it.
type PurchaseEntryResponse struct {
	DocumentResponse

	SupplierID  string     `json:"supplierId"`
	BillDate    time.Time  `json:"billDate"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	ReferenceNo string     `json:"referenceNo,omitempty"`
	Currency    string     `json:"currency"`

	Status         string `json:"status"`
	ReceivingState string `json:"receivingState"`
	PaymentState   string `json:"paymentState"`

	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountTotal   decimal.Decimal `json:"discountTotal"`
	TaxTotal        decimal.Decimal `json:"taxTotal"`
	SupplierExpense decimal.Decimal `json:"supplierExpense"`
	OtherExpense    decimal.Decimal `json:"otherExpense"`
	GrandTotal      decimal.Decimal `json:"grandTotal"`
	AmountPaid      decimal.Decimal `json:"amountPaid"`
	AmountDue       decimal.Decimal `json:"amountDue"`

	ReceivingRatio decimal.Decimal `json:"receivingRatio"`

	Lines    []PurchaseLineResponse    `json:"lines,omitempty"`
	Payments []PurchasePaymentResponse `json:"payments,omitempty"`
}

// FromPurchaseEntry converts a domain entry to the response DTO.
func FromPurchaseEntry(e *purchase.Entry) PurchaseEntryResponse {
	resp := PurchaseEntryResponse{
		DocumentResponse: FromDocument(e.Document),

		SupplierID:  e.SupplierID.String(),
		BillDate:    e.BillDate,
		DueDate:     e.DueDate,
		ReferenceNo: e.ReferenceNo,
		Currency:    e.Currency,

		Status:         string(e.Status()),
		ReceivingState: string(e.ReceivingDimension()),
		PaymentState:   string(e.PaymentDimension()),

		Subtotal:        e.Subtotal,
		DiscountTotal:   e.DiscountTotal,
		TaxTotal:        e.TaxTotal,
		SupplierExpense: e.SupplierExpense,
		OtherExpense:    e.OtherExpense,
		GrandTotal:      e.GrandTotal,
		AmountPaid:      e.AmountPaid,
		AmountDue:       e.AmountDue,

		ReceivingRatio: e.ReceivingRatio(),

		Lines:    make([]PurchaseLineResponse, 0, len(e.Lines)),
		Payments: make([]PurchasePaymentResponse, 0, len(e.Payments)),
	}

	for _, l := range e.Lines {
		resp.Lines = append(resp.Lines, PurchaseLineResponse{
			LineID:          l.LineID.String(),
			LineNo:          l.LineNo,
			ProductID:       l.ProductID.String(),
			Description:     l.Description,
			QtyOrdered:      l.QtyOrdered.Int64(),
			QtyReceived:     l.QtyReceived.Int64(),
			Remaining:       l.Remaining().Int64(),
			UnitCost:        l.UnitCost,
			DiscountAmount:  l.DiscountAmount,
			TaxPercent:      l.TaxPercent,
			CompletionRatio: l.CompletionRatio(),
		})
	}

	for _, p := range e.Payments {
		resp.Payments = append(resp.Payments, PurchasePaymentResponse{
			PaymentID: p.PaymentID.String(),
			PaidAt:    p.PaidAt,
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
			Note:      p.Note,
		})
	}
	return resp
}

// FromPurchaseEntryHeader converts a list row (no lines or payments).
func FromPurchaseEntryHeader(e *purchase.Entry) PurchaseEntryResponse {
	resp := FromPurchaseEntry(e)
	resp.Lines = nil
	resp.Payments = nil
	return resp
}
