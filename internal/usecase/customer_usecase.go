package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"sort"
	"strings"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/errs"
	"marcenaria_mdf/internal/domain/identity"
	"marcenaria_mdf/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrInvalidCustomerID     = fmt.Errorf("%w: invalid customer id", errs.ErrValidation)
	ErrInvalidCustomerName   = fmt.Errorf("%w: customer name is required", errs.ErrValidation)
	ErrInvalidEmail          = fmt.Errorf("%w: invalid email", errs.ErrValidation)
	ErrInvalidPostalCode     = fmt.Errorf("%w: invalid postal code", errs.ErrValidation)
	ErrAddressLookupDisabled = errors.New("address lookup not configured")
)

// CustomerInput is the full set of editable customer fields.
type CustomerInput struct {
	Name         string
	TaxID        string
	PersonType   entities.PersonType
	Phone        string
	Email        string
	PostalCode   string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
}

// CustomerPatch changes only the non-nil fields.
type CustomerPatch struct {
	Name         *string
	TaxID        *string
	PersonType   *entities.PersonType
	Phone        *string
	Email        *string
	PostalCode   *string
	Street       *string
	Number       *string
	Complement   *string
	Neighborhood *string
	City         *string
	State        *string
}

type ICustomerUseCase interface {
	Create(ctx context.Context, in CustomerInput) (entities.Customer, error)
	Update(ctx context.Context, id string, patch CustomerPatch) (entities.Customer, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (entities.Customer, error)
	List(ctx context.Context) ([]entities.Customer, error)
	Resolve(ctx context.Context, id string) (entities.Customer, error)
	LookupAddress(ctx context.Context, postalCode string) (entities.Address, error)
}

type CustomerUseCase struct {
	repo    interfaces.ICustomerRepository
	address interfaces.IAddressLookup
}

var _ ICustomerUseCase = (*CustomerUseCase)(nil)

// NewCustomerUseCase builds the use case. address may be nil, which disables auto-fill.
func NewCustomerUseCase(repo interfaces.ICustomerRepository, address interfaces.IAddressLookup) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, address: address}
}

func (u *CustomerUseCase) Create(ctx context.Context, in CustomerInput) (entities.Customer, error) {
	now := time.Now().UTC()
	c := entities.Customer{
		ID:           uuid.NewString(),
		Name:         in.Name,
		TaxID:        in.TaxID,
		PersonType:   in.PersonType,
		Phone:        in.Phone,
		Email:        in.Email,
		PostalCode:   in.PostalCode,
		Street:       in.Street,
		Number:       in.Number,
		Complement:   in.Complement,
		Neighborhood: in.Neighborhood,
		City:         in.City,
		State:        in.State,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if c.PersonType == "" {
		c.PersonType = entities.PersonTypeIndividual
	}

	c, err := normalizeCustomer(c)
	if err != nil {
		return entities.Customer{}, err
	}
	c = u.autofill(ctx, c)

	created, err := u.repo.Create(ctx, c)
	if err != nil {
		log.Printf("[customer][usecase] create failed err=%v", err)
		return entities.Customer{}, errs.Persistence(err)
	}
	log.Printf("[customer][usecase] create success id=%s", created.ID)
	return created, nil
}

func (u *CustomerUseCase) Update(ctx context.Context, id string, patch CustomerPatch) (entities.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Customer{}, ErrInvalidCustomerID
	}

	current, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Customer{}, errs.Persistence(err)
	}
	if current.ID == "" {
		return entities.Customer{}, ErrCustomerNotFound
	}

	next := current
	setString(&next.Name, patch.Name)
	setString(&next.TaxID, patch.TaxID)
	setString(&next.Phone, patch.Phone)
	setString(&next.Email, patch.Email)
	setString(&next.PostalCode, patch.PostalCode)
	setString(&next.Street, patch.Street)
	setString(&next.Number, patch.Number)
	setString(&next.Complement, patch.Complement)
	setString(&next.Neighborhood, patch.Neighborhood)
	setString(&next.City, patch.City)
	setString(&next.State, patch.State)
	if patch.PersonType != nil {
		next.PersonType = *patch.PersonType
	}

	next, err = normalizeCustomer(next)
	if err != nil {
		return entities.Customer{}, err
	}
	if patch.PostalCode != nil && next.PostalCode != current.PostalCode {
		next = u.autofill(ctx, next)
	}
	next.UpdatedAt = time.Now().UTC()

	updated, err := u.repo.Update(ctx, next)
	if err != nil {
		log.Printf("[customer][usecase] update failed id=%s err=%v", id, err)
		return entities.Customer{}, errs.Persistence(err)
	}
	if updated.ID == "" {
		return entities.Customer{}, ErrCustomerNotFound
	}
	return updated, nil
}

// Delete removes the customer only. Budgets pointing at it are left alone.
func (u *CustomerUseCase) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidCustomerID
	}
	ok, err := u.repo.Delete(ctx, id)
	if err != nil {
		log.Printf("[customer][usecase] delete failed id=%s err=%v", id, err)
		return errs.Persistence(err)
	}
	if !ok {
		return ErrCustomerNotFound
	}
	log.Printf("[customer][usecase] delete success id=%s", id)
	return nil
}

func (u *CustomerUseCase) Get(ctx context.Context, id string) (entities.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Customer{}, ErrInvalidCustomerID
	}
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Customer{}, errs.Persistence(err)
	}
	if c.ID == "" {
		return entities.Customer{}, ErrCustomerNotFound
	}
	return c, nil
}

// List returns customers ordered by name.
func (u *CustomerUseCase) List(ctx context.Context) ([]entities.Customer, error) {
	list, err := u.repo.List(ctx)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})
	return list, nil
}

// Resolve returns the placeholder customer when id points at nothing.
// An empty id resolves to the zero Customer.
func (u *CustomerUseCase) Resolve(ctx context.Context, id string) (entities.Customer, error) {
	return resolveCustomer(ctx, u.repo, id)
}

func (u *CustomerUseCase) LookupAddress(ctx context.Context, postalCode string) (entities.Address, error) {
	cep := identity.OnlyDigits(postalCode)
	if len(cep) != 8 {
		return entities.Address{}, ErrInvalidPostalCode
	}
	if u.address == nil {
		return entities.Address{}, ErrAddressLookupDisabled
	}
	return u.address.Lookup(ctx, cep)
}

// autofill is best-effort: lookup failures only get logged.
func (u *CustomerUseCase) autofill(ctx context.Context, c entities.Customer) entities.Customer {
	if u.address == nil || c.PostalCode == "" || c.Street != "" {
		return c
	}
	addr, err := u.address.Lookup(ctx, c.PostalCode)
	if err != nil {
		log.Printf("[customer][usecase] address lookup failed cep=%s err=%v", c.PostalCode, err)
		return c
	}
	if addr.Empty() {
		return c
	}
	c.Street = addr.Street
	if c.Neighborhood == "" {
		c.Neighborhood = addr.Neighborhood
	}
	if c.City == "" {
		c.City = addr.City
	}
	if c.State == "" {
		c.State = addr.State
	}
	if c.Complement == "" {
		c.Complement = addr.Complement
	}
	return c
}

func resolveCustomer(ctx context.Context, repo interfaces.ICustomerRepository, id string) (entities.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" || repo == nil {
		return entities.Customer{}, nil
	}
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return entities.Customer{}, errs.Persistence(err)
	}
	if c.ID == "" {
		return entities.MissingCustomer(id), nil
	}
	return c, nil
}

func normalizeCustomer(c entities.Customer) (entities.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, ErrInvalidCustomerName
	}
	if !c.PersonType.Valid() {
		return c, identity.ErrInvalidPersonType
	}

	c.TaxID = identity.OnlyDigits(c.TaxID)
	if c.TaxID != "" {
		if err := identity.ValidateTaxID(c.PersonType, c.TaxID); err != nil {
			return c, err
		}
	}

	if strings.TrimSpace(c.Phone) != "" {
		if err := identity.ValidatePhone(c.Phone); err != nil {
			return c, err
		}
		c.Phone = identity.NationalPhone(c.Phone)
	} else {
		c.Phone = ""
	}

	c.Email = strings.TrimSpace(c.Email)
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return c, ErrInvalidEmail
		}
	}

	c.PostalCode = identity.OnlyDigits(c.PostalCode)
	if c.PostalCode != "" && len(c.PostalCode) != 8 {
		return c, ErrInvalidPostalCode
	}

	c.Street = strings.TrimSpace(c.Street)
	c.Number = strings.TrimSpace(c.Number)
	c.Complement = strings.TrimSpace(c.Complement)
	c.Neighborhood = strings.TrimSpace(c.Neighborhood)
	c.City = strings.TrimSpace(c.City)
	c.State = strings.ToUpper(strings.TrimSpace(c.State))
	return c, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
