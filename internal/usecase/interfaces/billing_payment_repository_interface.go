package interfaces

import (
	"context"
	"marcenaria_mdf/internal/domain/entities"
)

// IBillingPaymentRepository stores charges made against budgets.
//
// Payments are keyed by the provider's payment id and are never updated;
// recording the same id twice is an error. GetByID returns a zero value when
// the id is unknown. ListByBudgetID returns oldest first.
type IBillingPaymentRepository interface {
	Create(ctx context.Context, p entities.BillingPayment) (entities.BillingPayment, error)
	GetByID(ctx context.Context, id string) (entities.BillingPayment, error)
	ListByBudgetID(ctx context.Context, budgetID string) ([]entities.BillingPayment, error)
}
