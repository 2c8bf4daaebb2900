package interfaces

import (
	"context"
	"marcenaria_mdf/internal/domain/entities"
)

// ICustomerRepository abstracts persistence for customers.
// Deleting a customer never touches budgets referencing it.
type ICustomerRepository interface {
	Create(ctx context.Context, c entities.Customer) (entities.Customer, error)
	GetByID(ctx context.Context, id string) (entities.Customer, error)
	List(ctx context.Context) ([]entities.Customer, error)
	Update(ctx context.Context, c entities.Customer) (entities.Customer, error)
	Delete(ctx context.Context, id string) (bool, error)
}
