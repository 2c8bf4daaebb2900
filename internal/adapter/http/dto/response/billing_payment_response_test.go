package response

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"marcenaria_mdf/internal/domain/entities"

	"github.com/shopspring/decimal"
)

func TestFromBillingPayment(t *testing.T) {
	paidAt := time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)
	p := entities.BillingPayment{
		ID:               "9001",
		BudgetID:         "bud-1",
		BudgetNumber:     "2026-004",
		Amount:           decimal.RequireFromString("1234.5"),
		Method:           "pix",
		Status:           entities.PaymentStatusApproved,
		ProviderStatus:   "approved",
		Date:             paidAt,
		ProviderResponse: json.RawMessage(`{"id":9001}`),
	}

	res := FromBillingPayment(p)
	if res.ID != "9001" || res.BudgetNumber != "2026-004" || res.Status != "approved" {
		t.Fatalf("unexpected fields: %+v", res)
	}
	if res.AmountLabel != "R$ 1.234,50" {
		t.Fatalf("unexpected amount label %q", res.AmountLabel)
	}

	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["amount"] != "1234.5" {
		t.Fatalf("amount must be an exact decimal string, got %v", body["amount"])
	}
	if body["provider_response"].(map[string]any)["id"] != float64(9001) {
		t.Fatalf("provider response should be embedded as json, got %s", raw)
	}
	if _, ok := body["warnings"]; ok {
		t.Fatalf("no warnings expected: %s", raw)
	}
}

func TestFromBillingPayment_DropsUnreadableProviderBody(t *testing.T) {
	res := FromBillingPayment(entities.BillingPayment{ID: "1", ProviderResponse: json.RawMessage(`{`)})
	if res.ProviderResponse != nil {
		t.Fatalf("broken provider body must not be echoed: %s", res.ProviderResponse)
	}
	if _, err := json.Marshal(res); err != nil {
		t.Fatalf("response must still marshal: %v", err)
	}
}

func TestBillingPaymentResponse_WithSettlementWarning(t *testing.T) {
	res := FromBillingPayment(entities.BillingPayment{ID: "1"}).WithSettlementWarning(errors.New("budget locked"))
	if len(res.Warnings) != 1 || res.Warnings[0].Channel != "budget" || res.Warnings[0].Message != "budget locked" {
		t.Fatalf("unexpected warnings: %+v", res.Warnings)
	}
}

func TestFromBillingPayments(t *testing.T) {
	if got := FromBillingPayments(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty, non-nil slice")
	}
	got := FromBillingPayments([]entities.BillingPayment{{ID: "b"}, {ID: "a"}})
	if len(got) != 2 || got[0].ID != "b" {
		t.Fatalf("order must be preserved: %+v", got)
	}
}
