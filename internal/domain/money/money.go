// Package money computes item totals, subtotals and discounted final amounts.
//
// Values are exact decimals. Nothing here rounds: Round2 and Format2 are
// meant for presentation and serialization boundaries only.
package money

import (
	"fmt"
	"strings"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = fmt.Errorf("%w: invalid amount", errs.ErrValidation)
	ErrOutOfRange          = fmt.Errorf("%w: discount out of range", errs.ErrValidation)
	ErrInvalidDiscountType = fmt.Errorf("%w: invalid discount type", errs.ErrValidation)
	ErrInvalidItem         = fmt.Errorf("%w: invalid item", errs.ErrValidation)
)

var hundred = decimal.NewFromInt(100)

// ItemTotal returns quantity × unitPrice.
func ItemTotal(quantity, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if quantity.IsNegative() || unitPrice.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return quantity.Mul(unitPrice), nil
}

// Subtotal sums the item totals, ignoring any TotalPrice already set on items.
func Subtotal(items []entities.BudgetItem) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, it := range items {
		total, err := ItemTotal(it.Quantity, it.UnitPrice)
		if err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(total)
	}
	return sum, nil
}

// FinalAmount applies d to subtotal. The result is floored at zero.
// A percent discount must be within [0,100] and a fixed one must not be negative.
func FinalAmount(subtotal decimal.Decimal, d entities.Discount) (decimal.Decimal, error) {
	if subtotal.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}

	var result decimal.Decimal
	switch d.Type {
	case entities.DiscountTypePercent:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			return decimal.Zero, ErrOutOfRange
		}
		result = subtotal.Sub(subtotal.Mul(d.Value).Div(hundred))
	case entities.DiscountTypeFixed:
		if d.Value.IsNegative() {
			return decimal.Zero, ErrOutOfRange
		}
		result = subtotal.Sub(d.Value)
	default:
		return decimal.Zero, ErrInvalidDiscountType
	}

	if result.IsNegative() {
		return decimal.Zero, nil
	}
	return result, nil
}

// Totals is the outcome of pricing a list of items.
type Totals struct {
	Items    []entities.BudgetItem
	Subtotal decimal.Decimal
	Final    decimal.Decimal
}

// Price validates items, fills in every TotalPrice and applies the discount.
// The input slice is not modified.
func Price(items []entities.BudgetItem, d entities.Discount) (Totals, error) {
	priced := make([]entities.BudgetItem, len(items))
	subtotal := decimal.Zero
	for i, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			return Totals{}, fmt.Errorf("%w: item %d has no description", ErrInvalidItem, i+1)
		}
		if !it.UnitType.Valid() {
			return Totals{}, fmt.Errorf("%w: item %d has unit type %q", ErrInvalidItem, i+1, it.UnitType)
		}
		total, err := ItemTotal(it.Quantity, it.UnitPrice)
		if err != nil {
			return Totals{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		it.Description = strings.TrimSpace(it.Description)
		it.TotalPrice = total
		priced[i] = it
		subtotal = subtotal.Add(total)
	}

	final, err := FinalAmount(subtotal, d)
	if err != nil {
		return Totals{}, err
	}
	return Totals{Items: priced, Subtotal: subtotal, Final: final}, nil
}

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format2 renders d with exactly two decimal places ("90.00").
func Format2(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatBRL renders d as Brazilian currency ("R$ 1.234,50").
func FormatBRL(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if d.Round(2).IsNegative() {
		sign = "-"
	}
	return sign + "R$ " + b.String() + "," + frac
}
