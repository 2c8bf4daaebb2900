package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/numbering"
	"marcenaria_mdf/internal/usecase/interfaces"
)

const budgetColumns = `id, sequential_number, title, customer_id, items, subtotal_amount,
	discount_type, discount_value, final_amount, status, payment_conditions,
	payment_methods, drawing_ref, created_at, updated_at, version`

// BudgetSQLiteRepository persists budgets in SQLite.
//
// Numbers come from budget_sequences: the counter bump and the budget insert
// share one transaction, so a failed insert never burns a number.
type BudgetSQLiteRepository struct {
	db  *sql.DB
	loc *time.Location
}

var _ interfaces.IBudgetRepository = (*BudgetSQLiteRepository)(nil)

func NewBudgetSQLiteRepository(db *sql.DB, loc *time.Location) *BudgetSQLiteRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &BudgetSQLiteRepository{db: db, loc: loc}
}

func (r *BudgetSQLiteRepository) Create(ctx context.Context, b entities.Budget) (entities.Budget, error) {
	year := numbering.YearOf(b.CreatedAt, r.loc)
	b.Version = 1

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return entities.Budget{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO budget_sequences (year, last_value) VALUES (?, 0) ON CONFLICT(year) DO NOTHING`, year); err != nil {
		return entities.Budget{}, fmt.Errorf("seed sequence: %w", err)
	}

	var seq int
	if err := tx.QueryRowContext(ctx,
		`UPDATE budget_sequences SET last_value = last_value + 1 WHERE year = ? RETURNING last_value`, year,
	).Scan(&seq); err != nil {
		return entities.Budget{}, fmt.Errorf("reserve number: %w", err)
	}
	b.SequentialNumber = numbering.Format(year, seq)

	row, err := toBudgetRow(b)
	if err != nil {
		return entities.Budget{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.args()...,
	); err != nil {
		return entities.Budget{}, fmt.Errorf("insert budget: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return entities.Budget{}, fmt.Errorf("commit: %w", err)
	}
	return b, nil
}

func (r *BudgetSQLiteRepository) GetByID(ctx context.Context, id string) (entities.Budget, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Budget{}, nil
	}
	return b, err
}

func (r *BudgetSQLiteRepository) List(ctx context.Context) ([]entities.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets ORDER BY created_at DESC, sequential_number DESC`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []entities.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// Update writes b only while the stored version is still b.Version. A missing
// row yields a zero Budget; a row that moved on yields entities.ErrStaleBudget.
func (r *BudgetSQLiteRepository) Update(ctx context.Context, b entities.Budget) (entities.Budget, error) {
	row, err := toBudgetRow(b)
	if err != nil {
		return entities.Budget{}, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE budgets SET
		title = ?, customer_id = ?, items = ?, subtotal_amount = ?, discount_type = ?,
		discount_value = ?, final_amount = ?, status = ?, payment_conditions = ?,
		payment_methods = ?, drawing_ref = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		row.Title, row.CustomerID, row.Items, row.Subtotal, row.DiscountType,
		row.DiscountValue, row.Final, row.Status, row.PaymentConditions,
		row.PaymentMethods, row.DrawingRef, row.UpdatedAt,
		row.ID, row.Version,
	)
	if err != nil {
		return entities.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return entities.Budget{}, err
	}
	if n == 0 {
		var stored int64
		err := r.db.QueryRowContext(ctx, `SELECT version FROM budgets WHERE id = ?`, b.ID).Scan(&stored)
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Budget{}, nil
		}
		if err != nil {
			return entities.Budget{}, fmt.Errorf("check budget version: %w", err)
		}
		log.Printf("[budget][repository] stale update id=%s version=%d stored=%d", b.ID, b.Version, stored)
		return entities.Budget{}, entities.ErrStaleBudget
	}
	return r.GetByID(ctx, b.ID)
}

func (r *BudgetSQLiteRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type budgetRow struct {
	ID                string
	Number            string
	Title             string
	CustomerID        string
	Items             string
	Subtotal          string
	DiscountType      string
	DiscountValue     string
	Final             string
	Status            string
	PaymentConditions string
	PaymentMethods    string
	DrawingRef        string
	CreatedAt         string
	UpdatedAt         string
	Version           int64
}

func (r budgetRow) args() []any {
	return []any{
		r.ID, r.Number, r.Title, r.CustomerID, r.Items, r.Subtotal,
		r.DiscountType, r.DiscountValue, r.Final, r.Status, r.PaymentConditions,
		r.PaymentMethods, r.DrawingRef, r.CreatedAt, r.UpdatedAt, r.Version,
	}
}

// Items reuse the budget item shape used for DynamoDB, serialized as JSON.
func toBudgetRow(b entities.Budget) (budgetRow, error) {
	it := toBudgetItem(b)
	items, err := json.Marshal(it.Items)
	if err != nil {
		return budgetRow{}, fmt.Errorf("encode items: %w", err)
	}
	methods, err := json.Marshal(it.PaymentMethods)
	if err != nil {
		return budgetRow{}, fmt.Errorf("encode payment methods: %w", err)
	}
	return budgetRow{
		ID:                it.ID,
		Number:            it.SequentialNumber,
		Title:             it.Title,
		CustomerID:        it.CustomerID,
		Items:             string(items),
		Subtotal:          it.SubtotalAmount,
		DiscountType:      it.DiscountType,
		DiscountValue:     it.DiscountValue,
		Final:             it.FinalAmount,
		Status:            it.Status,
		PaymentConditions: it.PaymentConditions,
		PaymentMethods:    string(methods),
		DrawingRef:        it.DrawingRef,
		CreatedAt:         it.CreatedAt,
		UpdatedAt:         it.UpdatedAt,
		Version:           it.Version,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(s rowScanner) (entities.Budget, error) {
	var r budgetRow
	if err := s.Scan(
		&r.ID, &r.Number, &r.Title, &r.CustomerID, &r.Items, &r.Subtotal,
		&r.DiscountType, &r.DiscountValue, &r.Final, &r.Status, &r.PaymentConditions,
		&r.PaymentMethods, &r.DrawingRef, &r.CreatedAt, &r.UpdatedAt, &r.Version,
	); err != nil {
		return entities.Budget{}, err
	}

	it := budgetItem{
		ID:                r.ID,
		SequentialNumber:  r.Number,
		Title:             r.Title,
		CustomerID:        r.CustomerID,
		SubtotalAmount:    r.Subtotal,
		DiscountType:      r.DiscountType,
		DiscountValue:     r.DiscountValue,
		FinalAmount:       r.Final,
		Status:            r.Status,
		PaymentConditions: r.PaymentConditions,
		DrawingRef:        r.DrawingRef,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		Version:           r.Version,
	}
	if err := json.Unmarshal([]byte(r.Items), &it.Items); err != nil {
		return entities.Budget{}, fmt.Errorf("decode items of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.PaymentMethods), &it.PaymentMethods); err != nil {
		return entities.Budget{}, fmt.Errorf("decode payment methods of %s: %w", r.ID, err)
	}
	return fromBudgetItem(it), nil
}
