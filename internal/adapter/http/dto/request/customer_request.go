package request

import (
	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/usecase"
)

type CustomerRequest struct {
	Name         string              `json:"name" binding:"required"`
	TaxID        string              `json:"tax_id"`
	PersonType   entities.PersonType `json:"person_type"`
	Phone        string              `json:"phone"`
	Email        string              `json:"email"`
	PostalCode   string              `json:"postal_code"`
	Street       string              `json:"street"`
	Number       string              `json:"number"`
	Complement   string              `json:"complement"`
	Neighborhood string              `json:"neighborhood"`
	City         string              `json:"city"`
	State        string              `json:"state"`
}

func (r CustomerRequest) ToInput() usecase.CustomerInput {
	return usecase.CustomerInput{
		Name:         r.Name,
		TaxID:        r.TaxID,
		PersonType:   r.PersonType,
		Phone:        r.Phone,
		Email:        r.Email,
		PostalCode:   r.PostalCode,
		Street:       r.Street,
		Number:       r.Number,
		Complement:   r.Complement,
		Neighborhood: r.Neighborhood,
		City:         r.City,
		State:        r.State,
	}
}

// CustomerPatchRequest only touches the fields that are present.
type CustomerPatchRequest struct {
	Name         *string              `json:"name"`
	TaxID        *string              `json:"tax_id"`
	PersonType   *entities.PersonType `json:"person_type"`
	Phone        *string              `json:"phone"`
	Email        *string              `json:"email"`
	PostalCode   *string              `json:"postal_code"`
	Street       *string              `json:"street"`
	Number       *string              `json:"number"`
	Complement   *string              `json:"complement"`
	Neighborhood *string              `json:"neighborhood"`
	City         *string              `json:"city"`
	State        *string              `json:"state"`
}

func (r CustomerPatchRequest) ToPatch() usecase.CustomerPatch {
	return usecase.CustomerPatch(r)
}
