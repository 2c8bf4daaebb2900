package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"marcenaria_mdf/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

var (
	ErrMissingAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
	ErrGatewayNotReady    = errors.New("mercado pago gateway not configured")
	ErrInvalidCharge      = errors.New("charge request without a positive transaction_amount")
)

// MercadoPagoGateway charges approved budgets through the Payments API.
// Simulated approvals live in the payment use case, so this type always
// talks to Mercado Pago.
type MercadoPagoGateway struct {
	client payment.Client
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string) (*MercadoPagoGateway, error) {
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	cfg, err := config.New(accessToken)
	if err != nil {
		log.Printf("[payment][gateway] sdk config failed err=%v", err)
		return nil, err
	}
	log.Printf("[payment][gateway] mercado pago client ready")
	return NewMercadoPagoGatewayWith(payment.NewClient(cfg)), nil
}

// NewMercadoPagoGatewayWith wraps an existing SDK client.
func NewMercadoPagoGatewayWith(client payment.Client) *MercadoPagoGateway {
	return &MercadoPagoGateway{client: client}
}

// CreatePayment sends the charge built by the use case. The budget id travels
// as external_reference so webhook events can be matched back to it.
func (g *MercadoPagoGateway) CreatePayment(ctx context.Context, requestPayload json.RawMessage) (string, string, json.RawMessage, error) {
	if g == nil || g.client == nil {
		return "", "", nil, ErrGatewayNotReady
	}

	var req payment.Request
	if err := json.Unmarshal(requestPayload, &req); err != nil {
		return "", "", nil, fmt.Errorf("decoding charge request: %w", err)
	}
	if req.TransactionAmount <= 0 {
		return "", "", nil, ErrInvalidCharge
	}
	log.Printf("[payment][gateway] charge start budget_id=%s amount=%.2f", req.ExternalReference, req.TransactionAmount)

	resp, err := g.client.Create(ctx, req)
	if err != nil {
		log.Printf("[payment][gateway] charge failed budget_id=%s err=%v", req.ExternalReference, err)
		return "", "", nil, err
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return "", "", nil, fmt.Errorf("encoding provider response: %w", err)
	}
	id := strconv.Itoa(resp.ID)
	log.Printf("[payment][gateway] charge done budget_id=%s provider_payment_id=%s status=%s", req.ExternalReference, id, resp.Status)
	return id, resp.Status, raw, nil
}
