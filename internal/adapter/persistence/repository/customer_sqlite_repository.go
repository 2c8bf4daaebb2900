package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/usecase/interfaces"
)

const customerColumns = `id, name, tax_id, person_type, phone, email, postal_code, street,
	number, complement, neighborhood, city, state, created_at, updated_at`

type CustomerSQLiteRepository struct {
	db *sql.DB
}

var _ interfaces.ICustomerRepository = (*CustomerSQLiteRepository)(nil)

func NewCustomerSQLiteRepository(db *sql.DB) *CustomerSQLiteRepository {
	return &CustomerSQLiteRepository{db: db}
}

func (r *CustomerSQLiteRepository) Create(ctx context.Context, c entities.Customer) (entities.Customer, error) {
	it := toCustomerItem(c)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (`+customerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.Name, it.TaxID, it.PersonType, it.Phone, it.Email, it.PostalCode, it.Street,
		it.Number, it.Complement, it.Neighborhood, it.City, it.State, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return entities.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	return c, nil
}

func (r *CustomerSQLiteRepository) GetByID(ctx context.Context, id string) (entities.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Customer{}, nil
	}
	return c, err
}

func (r *CustomerSQLiteRepository) List(ctx context.Context) ([]entities.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []entities.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerSQLiteRepository) Update(ctx context.Context, c entities.Customer) (entities.Customer, error) {
	it := toCustomerItem(c)
	res, err := r.db.ExecContext(ctx, `UPDATE customers SET
		name = ?, tax_id = ?, person_type = ?, phone = ?, email = ?, postal_code = ?,
		street = ?, number = ?, complement = ?, neighborhood = ?, city = ?, state = ?, updated_at = ?
		WHERE id = ?`,
		it.Name, it.TaxID, it.PersonType, it.Phone, it.Email, it.PostalCode,
		it.Street, it.Number, it.Complement, it.Neighborhood, it.City, it.State, it.UpdatedAt,
		it.ID,
	)
	if err != nil {
		return entities.Customer{}, fmt.Errorf("update customer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entities.Customer{}, nil
	}
	return r.GetByID(ctx, c.ID)
}

// Delete leaves budgets pointing at id untouched.
func (r *CustomerSQLiteRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete customer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanCustomer(s rowScanner) (entities.Customer, error) {
	var it customerItem
	if err := s.Scan(
		&it.ID, &it.Name, &it.TaxID, &it.PersonType, &it.Phone, &it.Email, &it.PostalCode, &it.Street,
		&it.Number, &it.Complement, &it.Neighborhood, &it.City, &it.State, &it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		return entities.Customer{}, err
	}
	return fromCustomerItem(it), nil
}
