package response

import (
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/usecase"

	"github.com/shopspring/decimal"
)

type BudgetItemResponse struct {
	Description string            `json:"description"`
	UnitType    entities.UnitType `json:"unit_type"`
	Quantity    decimal.Decimal   `json:"quantity"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	TotalPrice  decimal.Decimal   `json:"total_price"`
}

type DiscountResponse struct {
	Type  entities.DiscountType `json:"type"`
	Value decimal.Decimal       `json:"value"`
}

type WarningResponse struct {
	Channel string `json:"channel"`
	Message string `json:"message"`
}

// BudgetResponse carries amounts as exact decimal strings.
type BudgetResponse struct {
	ID                string               `json:"id"`
	SequentialNumber  string               `json:"sequential_number"`
	Title             string               `json:"title"`
	CustomerID        string               `json:"customer_id,omitempty"`
	Items             []BudgetItemResponse `json:"items"`
	SubtotalAmount    decimal.Decimal      `json:"subtotal_amount"`
	Discount          DiscountResponse     `json:"discount"`
	FinalAmount       decimal.Decimal      `json:"final_amount"`
	Status            string               `json:"status"`
	PaymentConditions string               `json:"payment_conditions,omitempty"`
	PaymentMethods    []string             `json:"payment_methods,omitempty"`
	DrawingRef        string               `json:"drawing_ref,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	Version           int64                `json:"version"`
	Warnings          []WarningResponse    `json:"warnings,omitempty"`
}

func FromBudget(b entities.Budget) BudgetResponse {
	items := make([]BudgetItemResponse, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, BudgetItemResponse(it))
	}
	return BudgetResponse{
		ID:                b.ID,
		SequentialNumber:  b.SequentialNumber,
		Title:             b.Title,
		CustomerID:        b.CustomerID,
		Items:             items,
		SubtotalAmount:    b.SubtotalAmount,
		Discount:          DiscountResponse(b.Discount),
		FinalAmount:       b.FinalAmount,
		Status:            string(b.Status),
		PaymentConditions: b.PaymentConditions,
		PaymentMethods:    b.PaymentMethods,
		DrawingRef:        b.DrawingRef,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
		Version:           b.Version,
	}
}

func FromBudgetResult(r usecase.BudgetResult) BudgetResponse {
	out := FromBudget(r.Budget)
	for _, w := range r.Warnings {
		out.Warnings = append(out.Warnings, WarningResponse{Channel: w.Channel, Message: w.Message})
	}
	return out
}

func FromBudgets(list []entities.Budget) []BudgetResponse {
	out := make([]BudgetResponse, 0, len(list))
	for _, b := range list {
		out = append(out, FromBudget(b))
	}
	return out
}

// ToBudget is used by HTTP clients to rebuild the entity.
func (r BudgetResponse) ToBudget() entities.Budget {
	items := make([]entities.BudgetItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, entities.BudgetItem(it))
	}
	return entities.Budget{
		ID:                r.ID,
		SequentialNumber:  r.SequentialNumber,
		Title:             r.Title,
		CustomerID:        r.CustomerID,
		Items:             items,
		SubtotalAmount:    r.SubtotalAmount,
		Discount:          entities.Discount(r.Discount),
		FinalAmount:       r.FinalAmount,
		Status:            entities.BudgetStatus(r.Status),
		PaymentConditions: r.PaymentConditions,
		PaymentMethods:    r.PaymentMethods,
		DrawingRef:        r.DrawingRef,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		Version:           r.Version,
	}
}

type ShareLinkResponse struct {
	Success bool   `json:"success"`
	Link    string `json:"link,omitempty"`
	Message string `json:"message"`
}

func FromLinkResult(r entities.LinkResult) ShareLinkResponse {
	return ShareLinkResponse(r)
}
