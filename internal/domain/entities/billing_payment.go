package entities

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusDenied   PaymentStatus = "denied"
)

// PaymentStatusFromProvider folds Mercado Pago statuses into the three we track.
// Anything still in flight (in_process, in_mediation, authorized) stays pending.
func PaymentStatusFromProvider(s string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved":
		return PaymentStatusApproved
	case "rejected", "cancelled", "refunded", "charged_back":
		return PaymentStatusDenied
	}
	return PaymentStatusPending
}

// BillingPayment is a charge made against an approved budget.
//
// ID is the provider's payment id. Amount and BudgetNumber are copied from the
// budget at charge time so the record still reads correctly after the budget
// is edited or deleted. ProviderResponse keeps the provider body for audit.
type BillingPayment struct {
	ID               string          `json:"id"`
	BudgetID         string          `json:"budget_id"`
	BudgetNumber     string          `json:"budget_number"`
	Amount           decimal.Decimal `json:"amount"`
	Method           string          `json:"method"`
	Status           PaymentStatus   `json:"status"`
	ProviderStatus   string          `json:"provider_status"`
	Simulated        bool            `json:"simulated"`
	Date             time.Time       `json:"date"`
	ProviderResponse json.RawMessage `json:"provider_response,omitempty"`
}

// Settles reports whether the charge is enough to move the budget to paid.
func (p BillingPayment) Settles() bool {
	return p.Status == PaymentStatusApproved
}
