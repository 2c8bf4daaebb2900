package response

import (
	"encoding/json"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/money"

	"github.com/shopspring/decimal"
)

type BillingPaymentResponse struct {
	ID               string            `json:"id"`
	BudgetID         string            `json:"budget_id"`
	BudgetNumber     string            `json:"budget_number,omitempty"`
	Amount           decimal.Decimal   `json:"amount"`
	AmountLabel      string            `json:"amount_label"`
	Method           string            `json:"method,omitempty"`
	Status           string            `json:"status"`
	ProviderStatus   string            `json:"provider_status,omitempty"`
	Simulated        bool              `json:"simulated"`
	Date             time.Time         `json:"date"`
	ProviderResponse json.RawMessage   `json:"provider_response,omitempty"`
	Warnings         []WarningResponse `json:"warnings,omitempty"`
}

func FromBillingPayment(p entities.BillingPayment) BillingPaymentResponse {
	res := BillingPaymentResponse{
		ID:             p.ID,
		BudgetID:       p.BudgetID,
		BudgetNumber:   p.BudgetNumber,
		Amount:         p.Amount,
		AmountLabel:    money.FormatBRL(p.Amount),
		Method:         p.Method,
		Status:         string(p.Status),
		ProviderStatus: p.ProviderStatus,
		Simulated:      p.Simulated,
		Date:           p.Date,
	}
	if json.Valid(p.ProviderResponse) {
		res.ProviderResponse = p.ProviderResponse
	}
	return res
}

// WithSettlementWarning flags a charge whose budget is still approved.
func (r BillingPaymentResponse) WithSettlementWarning(err error) BillingPaymentResponse {
	r.Warnings = append(r.Warnings, WarningResponse{Channel: "budget", Message: err.Error()})
	return r
}

func FromBillingPayments(list []entities.BillingPayment) []BillingPaymentResponse {
	out := make([]BillingPaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, FromBillingPayment(p))
	}
	return out
}
