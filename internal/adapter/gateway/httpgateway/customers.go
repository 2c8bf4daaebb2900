package httpgateway

import (
	"context"
	"net/http"
	"net/url"

	"marcenaria_mdf/internal/adapter/http/dto/request"
	"marcenaria_mdf/internal/adapter/http/dto/response"
	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/usecase/interfaces"
)

type CustomerRepository struct {
	c *Client
}

var _ interfaces.ICustomerRepository = (*CustomerRepository)(nil)

func (r *CustomerRepository) Create(ctx context.Context, c entities.Customer) (entities.Customer, error) {
	req := request.CustomerRequest{
		Name:         c.Name,
		TaxID:        c.TaxID,
		PersonType:   c.PersonType,
		Phone:        c.Phone,
		Email:        c.Email,
		PostalCode:   c.PostalCode,
		Street:       c.Street,
		Number:       c.Number,
		Complement:   c.Complement,
		Neighborhood: c.Neighborhood,
		City:         c.City,
		State:        c.State,
	}
	var out response.CustomerResponse
	if err := r.c.do(ctx, http.MethodPost, "/customers", req, &out); err != nil {
		return entities.Customer{}, err
	}
	return out.ToCustomer(), nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (entities.Customer, error) {
	var out response.CustomerResponse
	if err := r.c.do(ctx, http.MethodGet, customerPath(id), nil, &out); err != nil {
		if isNotFound(err) {
			return entities.Customer{}, nil
		}
		return entities.Customer{}, err
	}
	return out.ToCustomer(), nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]entities.Customer, error) {
	var out []response.CustomerResponse
	if err := r.c.do(ctx, http.MethodGet, "/customers", nil, &out); err != nil {
		return nil, err
	}
	list := make([]entities.Customer, 0, len(out))
	for _, c := range out {
		list = append(list, c.ToCustomer())
	}
	return list, nil
}

// Update replaces every editable field.
func (r *CustomerRepository) Update(ctx context.Context, c entities.Customer) (entities.Customer, error) {
	req := request.CustomerPatchRequest{
		Name:         &c.Name,
		TaxID:        &c.TaxID,
		PersonType:   &c.PersonType,
		Phone:        &c.Phone,
		Email:        &c.Email,
		PostalCode:   &c.PostalCode,
		Street:       &c.Street,
		Number:       &c.Number,
		Complement:   &c.Complement,
		Neighborhood: &c.Neighborhood,
		City:         &c.City,
		State:        &c.State,
	}
	var out response.CustomerResponse
	if err := r.c.do(ctx, http.MethodPatch, customerPath(c.ID), req, &out); err != nil {
		if isNotFound(err) {
			return entities.Customer{}, nil
		}
		return entities.Customer{}, err
	}
	return out.ToCustomer(), nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := r.c.do(ctx, http.MethodDelete, customerPath(id), nil, nil); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func customerPath(id string) string {
	return "/customers/" + url.PathEscape(id)
}
