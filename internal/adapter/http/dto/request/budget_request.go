package request

import (
	"strings"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/usecase"

	"github.com/shopspring/decimal"
)

type BudgetItemRequest struct {
	Description string            `json:"description"`
	UnitType    entities.UnitType `json:"unit_type"`
	Quantity    decimal.Decimal   `json:"quantity"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
}

type DiscountRequest struct {
	Type  entities.DiscountType `json:"type"`
	Value decimal.Decimal       `json:"value"`
}

// CreateBudgetRequest opens a budget. Totals, number and status are never
// accepted from the client.
type CreateBudgetRequest struct {
	Title             string              `json:"title" binding:"required"`
	CustomerID        string              `json:"customer_id"`
	Items             []BudgetItemRequest `json:"items" binding:"required"`
	Discount          *DiscountRequest    `json:"discount"`
	PaymentConditions string              `json:"payment_conditions"`
	PaymentMethods    []string            `json:"payment_methods"`
	DrawingRef        string              `json:"drawing_ref"`
	Notify            bool                `json:"notify"`
}

func (r CreateBudgetRequest) ToInput() usecase.CreateBudgetInput {
	in := usecase.CreateBudgetInput{
		Title:             r.Title,
		CustomerID:        r.CustomerID,
		Items:             toItems(r.Items),
		Discount:          entities.NoDiscount(),
		PaymentConditions: r.PaymentConditions,
		PaymentMethods:    r.PaymentMethods,
		DrawingRef:        r.DrawingRef,
		Notify:            r.Notify,
	}
	if r.Discount != nil {
		in.Discount = r.Discount.toDiscount()
	}
	return in
}

// UpdateBudgetRequest only touches the fields that are present.
type UpdateBudgetRequest struct {
	Title             *string              `json:"title"`
	CustomerID        *string              `json:"customer_id"`
	Items             *[]BudgetItemRequest `json:"items"`
	Discount          *DiscountRequest     `json:"discount"`
	Status            *string              `json:"status"`
	PaymentConditions *string              `json:"payment_conditions"`
	PaymentMethods    *[]string            `json:"payment_methods"`
	DrawingRef        *string              `json:"drawing_ref"`
}

func (r UpdateBudgetRequest) ToPatch() usecase.BudgetPatch {
	p := usecase.BudgetPatch{
		Title:             r.Title,
		CustomerID:        r.CustomerID,
		PaymentConditions: r.PaymentConditions,
		PaymentMethods:    r.PaymentMethods,
		DrawingRef:        r.DrawingRef,
	}
	if r.Items != nil {
		items := toItems(*r.Items)
		p.Items = &items
	}
	if r.Discount != nil {
		d := r.Discount.toDiscount()
		p.Discount = &d
	}
	if r.Status != nil {
		s := ParseStatus(*r.Status)
		p.Status = &s
	}
	return p
}

type UpdateBudgetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ParseStatus lowercases and trims; validity is checked by the use case.
func ParseStatus(s string) entities.BudgetStatus {
	return entities.BudgetStatus(strings.ToLower(strings.TrimSpace(s)))
}

func (d DiscountRequest) toDiscount() entities.Discount {
	t := d.Type
	if t == "" {
		t = entities.DiscountTypeFixed
	}
	return entities.Discount{Type: t, Value: d.Value}
}

func toItems(in []BudgetItemRequest) []entities.BudgetItem {
	out := make([]entities.BudgetItem, 0, len(in))
	for _, it := range in {
		out = append(out, entities.BudgetItem{
			Description: it.Description,
			UnitType:    it.UnitType,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return out
}
