package dto

import (
	"github.com/shopspring/decimal"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/domain/orders"
)

// SalesOrderLineRequest describes one line of a sales order.
type SalesOrderLineRequest struct {
	ProductID      string          `json:"productId" binding:"required"`
	Qty            int64           `json:"qty" binding:"required,min=1"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// CreateSalesOrderRequest is the request body for creating a sales order.
type CreateSalesOrderRequest struct {
	CustomerID string                  `json:"customerId" binding:"required"`
	Code       string                  `json:"code"`
	Currency   string                  `json:"currency"`
	Notes      string                  `json:"notes"`
	Lines      []SalesOrderLineRequest `json:"lines" binding:"required,min=1"`
}

// ApplyLines adds the requested lines to the order.
func (r *CreateSalesOrderRequest) ApplyLines(o *orders.SalesOrder) error {
	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return apperror.NewValidation("invalid product id").
				WithDetail("productId", line.ProductID)
		}
		o.AddLine(productID, line.Qty, line.UnitPrice, line.DiscountAmount)
	}
	return nil
}

// UpdateSalesOrderRequest replaces the order's lines and notes.
type UpdateSalesOrderRequest struct {
	Notes   *string                 `json:"notes"`
	Lines   []SalesOrderLineRequest `json:"lines" binding:"required,min=1"`
	Version int                     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies the update onto an existing order.
func (r *UpdateSalesOrderRequest) ApplyTo(o *orders.SalesOrder) error {
	if r.Notes != nil {
		o.Notes = *r.Notes
	}
	o.Lines = o.Lines[:0]
	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return apperror.NewValidation("invalid product id").
				WithDetail("productId", line.ProductID)
		}
		o.AddLine(productID, line.Qty, line.UnitPrice, line.DiscountAmount)
	}
	o.Version = r.Version
	return nil
}

// SalesOrderLineResponse is the line representation returned by the API.
type SalesOrderLineResponse struct {
	LineID         string          `json:"lineId"`
	LineNo         int             `json:"lineNo"`
	ProductID      string          `json:"productId"`
	Qty            int64           `json:"qty"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Amount         decimal.Decimal `json:"amount"`
}

// SalesOrderResponse is the sales order representation returned by the API.
type SalesOrderResponse struct {
	DocumentResponse

	CustomerID string `json:"customerId"`
	Status     string `json:"status"`
	Currency   string `json:"currency"`

	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discountTotal"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`

	Lines []SalesOrderLineResponse `json:"lines,omitempty"`
}

// FromSalesOrder converts a domain order to the response DTO.
func FromSalesOrder(o *orders.SalesOrder) SalesOrderResponse {
	resp := SalesOrderResponse{
		DocumentResponse: FromDocument(o.Document),
		CustomerID:       o.CustomerID.String(),
		Status:           string(o.Status),
		Currency:         o.Currency,
		Subtotal:         o.Subtotal,
		DiscountTotal:    o.DiscountTotal,
		GrandTotal:       o.GrandTotal,
		Lines:            make([]SalesOrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, SalesOrderLineResponse{
			LineID:         l.LineID.String(),
			LineNo:         l.LineNo,
			ProductID:      l.ProductID.String(),
			Qty:            l.Qty.Int64(),
			UnitPrice:      l.UnitPrice,
			DiscountAmount: l.DiscountAmount,
			Amount:         l.Amount(),
		})
	}
	return resp
}
