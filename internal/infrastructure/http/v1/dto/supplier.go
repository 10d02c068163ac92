package dto

import (
	"retailcore/internal/core/id"
	"retailcore/internal/domain/catalogs/supplier"
)

// CreateSupplierRequest is the request body for creating a supplier.
type CreateSupplierRequest struct {
	Code             string  `json:"code"`
	Name             string  `json:"name" binding:"required"`
	TaxID            *string `json:"taxId"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	ContactPerson    *string `json:"contactPerson"`
	PaymentTermsDays int     `json:"paymentTermsDays"`
	Comment          *string `json:"comment"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSupplierRequest) ToEntity(tenantID id.ID) *supplier.Supplier {
	s := supplier.NewSupplier(tenantID, r.Code, r.Name)
	s.TaxID = r.TaxID
	s.Email = r.Email
	s.Phone = r.Phone
	s.Address = r.Address
	s.ContactPerson = r.ContactPerson
	s.PaymentTermsDays = r.PaymentTermsDays
	s.Comment = r.Comment
	return s
}

// UpdateSupplierRequest is the request body for updating a supplier.
// Nil fields are left unchanged.
type UpdateSupplierRequest struct {
	Code             *string `json:"code"`
	Name             *string `json:"name"`
	TaxID            *string `json:"taxId"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	ContactPerson    *string `json:"contactPerson"`
	PaymentTermsDays *int    `json:"paymentTermsDays"`
	Comment          *string `json:"comment"`
	Version          int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies non-nil fields onto an existing entity.
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	if r.Code != nil {
		s.Code = *r.Code
	}
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.TaxID != nil {
		s.TaxID = r.TaxID
	}
	if r.Email != nil {
		s.Email = r.Email
	}
	if r.Phone != nil {
		s.Phone = r.Phone
	}
	if r.Address != nil {
		s.Address = r.Address
	}
	if r.ContactPerson != nil {
		s.ContactPerson = r.ContactPerson
	}
	if r.PaymentTermsDays != nil {
		s.PaymentTermsDays = *r.PaymentTermsDays
	}
	if r.Comment != nil {
		s.Comment = r.Comment
	}
	s.Version = r.Version
}

// SupplierResponse is the supplier representation returned by the API.
type SupplierResponse struct {
	CatalogResponse
	TaxID            *string `json:"taxId,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Address          *string `json:"address,omitempty"`
	ContactPerson    *string `json:"contactPerson,omitempty"`
	PaymentTermsDays int     `json:"paymentTermsDays"`
	Comment          *string `json:"comment,omitempty"`
}

// FromSupplier converts a domain entity to the response DTO.
func FromSupplier(s *supplier.Supplier) SupplierResponse {
	return SupplierResponse{
		CatalogResponse:  FromCatalog(s.Catalog),
		TaxID:            s.TaxID,
		Email:            s.Email,
		Phone:            s.Phone,
		Address:          s.Address,
		ContactPerson:    s.ContactPerson,
		PaymentTermsDays: s.PaymentTermsDays,
		Comment:          s.Comment,
	}
}
