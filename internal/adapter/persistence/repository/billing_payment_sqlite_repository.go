package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/usecase/interfaces"
)

const paymentColumns = `id, budget_id, budget_number, amount, method, status,
	provider_status, simulated, date, provider_response`

type BillingPaymentSQLiteRepository struct {
	db *sql.DB
}

var _ interfaces.IBillingPaymentRepository = (*BillingPaymentSQLiteRepository)(nil)

func NewBillingPaymentSQLiteRepository(db *sql.DB) *BillingPaymentSQLiteRepository {
	return &BillingPaymentSQLiteRepository{db: db}
}

func (r *BillingPaymentSQLiteRepository) Create(ctx context.Context, p entities.BillingPayment) (entities.BillingPayment, error) {
	it := toBillingPaymentItem(p)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO billing_payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.BudgetID, it.BudgetNumber, it.Amount, it.Method, it.Status,
		it.ProviderStatus, it.Simulated, it.Date, it.ProviderResponse,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return entities.BillingPayment{}, fmt.Errorf("%w: %s", ErrDuplicatePayment, p.ID)
		}
		return entities.BillingPayment{}, fmt.Errorf("insert payment: %w", err)
	}
	return p, nil
}

func (r *BillingPaymentSQLiteRepository) GetByID(ctx context.Context, id string) (entities.BillingPayment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM billing_payments WHERE id = ?`, id)
	p, err := scanBillingPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.BillingPayment{}, nil
	}
	return p, err
}

func (r *BillingPaymentSQLiteRepository) ListByBudgetID(ctx context.Context, budgetID string) ([]entities.BillingPayment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM billing_payments WHERE budget_id = ? ORDER BY date`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]entities.BillingPayment, 0)
	for rows.Next() {
		p, err := scanBillingPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanBillingPayment(s rowScanner) (entities.BillingPayment, error) {
	var it billingPaymentItem
	err := s.Scan(&it.ID, &it.BudgetID, &it.BudgetNumber, &it.Amount, &it.Method, &it.Status,
		&it.ProviderStatus, &it.Simulated, &it.Date, &it.ProviderResponse)
	if err != nil {
		return entities.BillingPayment{}, err
	}
	return fromBillingPaymentItem(it), nil
}
