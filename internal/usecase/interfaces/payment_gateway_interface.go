package interfaces

import (
	"context"
	"encoding/json"
)

// IPaymentGateway submits a prepared charge to the payment provider.
//
// requestPayload is the provider's own request body, already carrying the
// budget amount and external_reference. The raw response is returned as-is
// so it can be kept alongside the payment.
type IPaymentGateway interface {
	CreatePayment(ctx context.Context, requestPayload json.RawMessage) (providerPaymentID string, providerStatus string, providerResponse json.RawMessage, err error)
}
