package entities

import "github.com/shopspring/decimal"

type DiscountType string

const (
	DiscountTypeFixed   DiscountType = "fixed"
	DiscountTypePercent DiscountType = "percent"
)

// Discount is either a percentage of the subtotal or a fixed amount.
// A budget carries exactly one; there is no separate percent and fixed field.
type Discount struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

func PercentDiscount(v decimal.Decimal) Discount {
	return Discount{Type: DiscountTypePercent, Value: v}
}

func FixedDiscount(v decimal.Decimal) Discount {
	return Discount{Type: DiscountTypeFixed, Value: v}
}

// NoDiscount is a fixed discount of zero.
func NoDiscount() Discount {
	return FixedDiscount(decimal.Zero)
}

func (d Discount) IsZero() bool {
	return d.Value.IsZero()
}

func (d Discount) Equal(o Discount) bool {
	return d.Type == o.Type && d.Value.Equal(o.Value)
}
