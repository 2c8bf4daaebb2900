package interfaces

import (
	"context"
	"marcenaria_mdf/internal/domain/entities"
)

// IAddressLookup resolves a postal code. An unknown code yields an empty Address and no error.
type IAddressLookup interface {
	Lookup(ctx context.Context, postalCode string) (entities.Address, error)
}
