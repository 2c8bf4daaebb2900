package response

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/usecase"

	"github.com/shopspring/decimal"
)

func TestBudgetResponse_RoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 10, 14, 5, 9, 0, time.UTC)
	b := entities.Budget{
		ID:               "bud-1",
		SequentialNumber: "2026-001",
		Title:            "Cozinha",
		CustomerID:       "cus-1",
		Items: []entities.BudgetItem{{
			Description: "Armário",
			UnitType:    entities.UnitTypeLength,
			Quantity:    decimal.RequireFromString("2.333"),
			UnitPrice:   decimal.RequireFromString("100"),
			TotalPrice:  decimal.RequireFromString("233.3"),
		}},
		SubtotalAmount: decimal.RequireFromString("233.3"),
		Discount:       entities.PercentDiscount(decimal.NewFromInt(10)),
		FinalAmount:    decimal.RequireFromString("209.97"),
		Status:         entities.BudgetStatusSent,
		PaymentMethods: []string{"pix"},
		CreatedAt:      created,
		UpdatedAt:      created,
	}

	raw, err := json.Marshal(FromBudget(b))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded BudgetResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := decoded.ToBudget()

	if got.ID != b.ID || got.SequentialNumber != b.SequentialNumber || got.Status != b.Status {
		t.Fatalf("unexpected identity fields: %+v", got)
	}
	if !got.Items[0].Quantity.Equal(b.Items[0].Quantity) || !got.FinalAmount.Equal(b.FinalAmount) {
		t.Fatalf("amounts lost precision: %+v", got)
	}
	if !got.Discount.Equal(b.Discount) {
		t.Fatalf("unexpected discount: %+v", got.Discount)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at: %v", got.CreatedAt)
	}
}

func TestFromBudgetResult_Warnings(t *testing.T) {
	res := FromBudgetResult(usecase.BudgetResult{
		Budget:   entities.Budget{ID: "bud-1"},
		Warnings: []usecase.NotificationWarning{{Channel: "email", Message: "smtp down", Err: errors.New("smtp down")}},
	})
	if len(res.Warnings) != 1 || res.Warnings[0].Channel != "email" || res.Warnings[0].Message != "smtp down" {
		t.Fatalf("unexpected warnings: %+v", res.Warnings)
	}
	if len(res.Items) != 0 || res.Items == nil {
		t.Fatalf("items should be an empty list, got %#v", res.Items)
	}
}

func TestFromReportSummary(t *testing.T) {
	res := FromReportSummary(usecase.ReportSummary{
		TotalBudgets:  2,
		ByStatus:      map[entities.BudgetStatus]int{entities.BudgetStatusPaid: 1},
		Revenue:       decimal.RequireFromString("400"),
		PaidRevenue:   decimal.RequireFromString("49.5"),
		AverageTicket: decimal.RequireFromString("200"),
	})
	if res.Revenue != "400.00" || res.PaidRevenue != "49.50" || res.AverageTicket != "200.00" {
		t.Fatalf("unexpected amounts: %+v", res)
	}
	if res.ByStatus["paid"] != 1 {
		t.Fatalf("unexpected by_status: %+v", res.ByStatus)
	}
}
