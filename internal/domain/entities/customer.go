package entities

import "time"

type PersonType string

const (
	PersonTypeIndividual PersonType = "individual" // CPF
	PersonTypeCompany    PersonType = "company"    // CNPJ
)

func (p PersonType) Valid() bool {
	return p == PersonTypeIndividual || p == PersonTypeCompany
}

// MissingCustomerName is shown for budgets whose customer no longer exists.
const MissingCustomerName = "Cliente não encontrado"

// Customer is a client of the shop. Phone, postal code and tax id are stored
// as digits only; formatting is a presentation concern.
type Customer struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	TaxID        string     `json:"tax_id,omitempty"`
	PersonType   PersonType `json:"person_type"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	PostalCode   string     `json:"postal_code,omitempty"`
	Street       string     `json:"street,omitempty"`
	Number       string     `json:"number,omitempty"`
	Complement   string     `json:"complement,omitempty"`
	Neighborhood string     `json:"neighborhood,omitempty"`
	City         string     `json:"city,omitempty"`
	State        string     `json:"state,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// MissingCustomer is the placeholder returned when a referenced customer is gone.
func MissingCustomer(id string) Customer {
	return Customer{ID: id, Name: MissingCustomerName}
}

// IsPlaceholder reports whether c was produced by MissingCustomer.
func (c Customer) IsPlaceholder() bool {
	return c.Name == MissingCustomerName && c.CreatedAt.IsZero()
}

// Address is the result of a postal code lookup.
type Address struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

func (a Address) Empty() bool {
	return a.Street == "" && a.Neighborhood == "" && a.City == "" && a.State == ""
}
