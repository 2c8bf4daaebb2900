package entities

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// UnitType tells how an item quantity is measured.
type UnitType string

const (
	UnitTypeLength UnitType = "length" // linear meters
	UnitTypeUnit   UnitType = "unit"
)

func (u UnitType) Valid() bool {
	return u == UnitTypeLength || u == UnitTypeUnit
}

// BudgetItem is one priced line of a budget.
// TotalPrice is always Quantity × UnitPrice and is recomputed on every write.
type BudgetItem struct {
	Description string          `json:"description"`
	UnitType    UnitType        `json:"unit_type"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// ErrStaleBudget is returned by repositories when an update was computed
// from a version that is no longer the stored one.
var ErrStaleBudget = errors.New("budget changed since it was read")

// Budget is a price quote (orçamento) issued to a customer.
//
// Storage model (DynamoDB):
//   - PK: id
//   - numbering counter lives in a separate table keyed by year
//
// Monetary representation:
//   - amounts are exact decimals; rounding to 2 places only happens when
//     presenting or serializing.
//
// Version starts at 1 and grows by one on every stored update; writes are
// accepted only against the version they were computed from.
//
// CustomerID is a reference only. A budget whose customer has been deleted
// stays valid and resolves to a placeholder customer at read time.
type Budget struct {
	ID                string          `json:"id"`
	SequentialNumber  string          `json:"sequential_number"`
	Title             string          `json:"title"`
	CustomerID        string          `json:"customer_id,omitempty"`
	Items             []BudgetItem    `json:"items"`
	SubtotalAmount    decimal.Decimal `json:"subtotal_amount"`
	Discount          Discount        `json:"discount"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
	Status            BudgetStatus    `json:"status"`
	PaymentConditions string          `json:"payment_conditions,omitempty"`
	PaymentMethods    []string        `json:"payment_methods,omitempty"`
	DrawingRef        string          `json:"drawing_ref,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int64           `json:"version"`
}

// Clone returns a copy that shares no slices with b.
func (b Budget) Clone() Budget {
	out := b
	if b.Items != nil {
		out.Items = make([]BudgetItem, len(b.Items))
		copy(out.Items, b.Items)
	}
	if b.PaymentMethods != nil {
		out.PaymentMethods = make([]string, len(b.PaymentMethods))
		copy(out.PaymentMethods, b.PaymentMethods)
	}
	return out
}
