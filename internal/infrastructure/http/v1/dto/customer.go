package dto

import (
	"retailcore/internal/core/id"
	"retailcore/internal/domain/catalogs/customer"
)

// CreateCustomerRequest is the request body for creating a customer.
type CreateCustomerRequest struct {
	Code          string  `json:"code"`
	Name          string  `json:"name" binding:"required"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contactPerson"`
	Comment       *string `json:"comment"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCustomerRequest) ToEntity(tenantID id.ID) *customer.Customer {
	c := customer.NewCustomer(tenantID, r.Code, r.Name)
	c.Email = r.Email
	c.Phone = r.Phone
	c.Address = r.Address
	c.ContactPerson = r.ContactPerson
	c.Comment = r.Comment
	return c
}

// UpdateCustomerRequest is the request body for updating a customer.
// Nil fields are left unchanged.
type UpdateCustomerRequest struct {
	Code          *string `json:"code"`
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contactPerson"`
	Comment       *string `json:"comment"`
	Version       int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies non-nil fields onto an existing entity.
func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Code != nil {
		c.Code = *r.Code
	}
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email != nil {
		c.Email = r.Email
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.ContactPerson != nil {
		c.ContactPerson = r.ContactPerson
	}
	if r.Comment != nil {
		c.Comment = r.Comment
	}
	c.Version = r.Version
}

// CustomerResponse is the customer representation returned by the API.
type CustomerResponse struct {
	CatalogResponse
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Comment       *string `json:"comment,omitempty"`
}

// FromCustomer converts a domain entity to the response DTO.
func FromCustomer(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		Email:           c.Email,
		Phone:           c.Phone,
		Address:         c.Address,
		ContactPerson:   c.ContactPerson,
		Comment:         c.Comment,
	}
}
