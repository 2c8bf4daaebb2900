package request

import "encoding/json"

// BillingPaymentCreateRequest wraps the Mercado Pago body for a budget charge.
// A bare Mercado Pago body is accepted too. transaction_amount is always
// overwritten with the budget's final amount.
type BillingPaymentCreateRequest struct {
	MPPayload json.RawMessage `json:"mp_payload" swaggertype:"object"`
}

// UnwrapChargeBody returns the Mercado Pago body from either form.
func UnwrapChargeBody(raw []byte) (json.RawMessage, bool) {
	var envelope map[string]json.RawMessage
	if json.Unmarshal(raw, &envelope) != nil {
		return raw, true
	}
	wrapped, ok := envelope["mp_payload"]
	if !ok {
		return raw, true
	}
	if len(wrapped) == 0 || string(wrapped) == "null" {
		return nil, false
	}
	return wrapped, true
}
