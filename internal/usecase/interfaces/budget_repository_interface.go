package interfaces

import (
	"context"
	"marcenaria_mdf/internal/domain/entities"
)

// IBudgetRepository abstracts the system of record for budgets.
//
// Create reserves the next sequential number for the budget's creation year
// in the same atomic write that inserts the row, and returns the canonical
// record. Lookups return a zero-value Budget when nothing matches.
type IBudgetRepository interface {
	Create(ctx context.Context, b entities.Budget) (entities.Budget, error)
	GetByID(ctx context.Context, id string) (entities.Budget, error)
	List(ctx context.Context) ([]entities.Budget, error)
	Update(ctx context.Context, b entities.Budget) (entities.Budget, error)
	Delete(ctx context.Context, id string) (bool, error)
}
