package response

import (
	"time"

	"marcenaria_mdf/internal/domain/entities"
)

type CustomerResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	TaxID        string              `json:"tax_id,omitempty"`
	PersonType   entities.PersonType `json:"person_type"`
	Phone        string              `json:"phone,omitempty"`
	Email        string              `json:"email,omitempty"`
	PostalCode   string              `json:"postal_code,omitempty"`
	Street       string              `json:"street,omitempty"`
	Number       string              `json:"number,omitempty"`
	Complement   string              `json:"complement,omitempty"`
	Neighborhood string              `json:"neighborhood,omitempty"`
	City         string              `json:"city,omitempty"`
	State        string              `json:"state,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func FromCustomer(c entities.Customer) CustomerResponse {
	return CustomerResponse(c)
}

func FromCustomers(list []entities.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, FromCustomer(c))
	}
	return out
}

func (r CustomerResponse) ToCustomer() entities.Customer {
	return entities.Customer(r)
}

type AddressResponse struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

func FromAddress(a entities.Address) AddressResponse {
	return AddressResponse(a)
}
