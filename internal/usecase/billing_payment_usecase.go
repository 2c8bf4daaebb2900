package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/errs"
	"marcenaria_mdf/internal/domain/money"
	"marcenaria_mdf/internal/usecase/interfaces"
)

var (
	ErrBillingPaymentNotFound         = errors.New("billing payment not found")
	ErrInvalidPaymentBudgetID         = fmt.Errorf("%w: invalid budget_id", errs.ErrValidation)
	ErrInvalidMPPayload               = fmt.Errorf("%w: invalid mercado pago payload", errs.ErrValidation)
	ErrBudgetNotApproved              = errors.New("budget not approved")
	ErrBudgetNotSettled               = errors.New("payment recorded but budget not marked as paid")
	ErrPaymentGatewayNotConfigured    = errors.New("payment gateway not configured")
	ErrPaymentGatewayBadRequest       = errors.New("payment gateway bad request")
	ErrPaymentGatewayUnauthorized     = errors.New("payment gateway unauthorized")
	ErrPaymentGatewayInvalidUsers     = errors.New("payment gateway invalid users involved")
	ErrPaymentGatewayCustomerNotFound = errors.New("payment gateway customer not found")
)

// sandboxFallbackPayer is the buyer Mercado Pago accepts for TEST- tokens.
const sandboxFallbackPayer = "test_user_br@testuser.com"

// PaymentOptions mirrors the MERCADOPAGO_* / PAYMENT_GATEWAY_MOCK settings.
type PaymentOptions struct {
	Mock            bool
	AccessToken     string
	TestPayerEmail  string
	TestPayerUserID string
}

func (o PaymentOptions) sandbox() bool {
	return strings.HasPrefix(strings.TrimSpace(o.AccessToken), "TEST-")
}

// IBillingPaymentUseCase charges approved budgets.
//
// A successful charge is persisted and then moves the budget approved -> paid
// through the lifecycle manager, so the usual notifications fire.
type IBillingPaymentUseCase interface {
	CreateAndApprove(ctx context.Context, budgetID string, mpPayload json.RawMessage) (entities.BillingPayment, error)
	GetByID(ctx context.Context, id string) (entities.BillingPayment, error)
	ListByBudgetID(ctx context.Context, budgetID string) ([]entities.BillingPayment, error)
	Latest(ctx context.Context, budgetID string) (entities.BillingPayment, error)
}

type BillingPaymentUseCase struct {
	repo    interfaces.IBillingPaymentRepository
	budgets IBudgetUseCase
	gateway interfaces.IPaymentGateway
	opts    PaymentOptions
	now     func() time.Time
}

var _ IBillingPaymentUseCase = (*BillingPaymentUseCase)(nil)

func NewBillingPaymentUseCase(repo interfaces.IBillingPaymentRepository, budgets IBudgetUseCase, gateway interfaces.IPaymentGateway, opts PaymentOptions) *BillingPaymentUseCase {
	return &BillingPaymentUseCase{repo: repo, budgets: budgets, gateway: gateway, opts: opts, now: time.Now}
}

// chargeResult is what came back from the provider, or the simulated approval.
type chargeResult struct {
	id     string
	status string
	raw    json.RawMessage
}

func (u *BillingPaymentUseCase) CreateAndApprove(ctx context.Context, budgetID string, mpPayload json.RawMessage) (entities.BillingPayment, error) {
	budgetID = strings.TrimSpace(budgetID)
	log.Printf("[payment][usecase] charge start budget_id=%s payload_len=%d mock=%t", budgetID, len(mpPayload), u.opts.Mock)
	if budgetID == "" {
		return entities.BillingPayment{}, ErrInvalidPaymentBudgetID
	}
	payload, err := u.decodePayload(mpPayload)
	if err != nil {
		log.Printf("[payment][usecase] rejected payload budget_id=%s", budgetID)
		return entities.BillingPayment{}, err
	}
	if u.gateway == nil && !u.opts.Mock {
		return entities.BillingPayment{}, ErrPaymentGatewayNotConfigured
	}
	if u.budgets == nil {
		return entities.BillingPayment{}, errors.New("budget use case not configured")
	}

	budget, err := u.budgets.Get(ctx, budgetID)
	if err != nil {
		log.Printf("[payment][usecase] budget lookup failed budget_id=%s err=%v", budgetID, err)
		return entities.BillingPayment{}, err
	}
	if budget.Status != entities.BudgetStatusApproved {
		log.Printf("[payment][usecase] budget not chargeable budget_id=%s status=%s", budgetID, budget.Status)
		return entities.BillingPayment{}, ErrBudgetNotApproved
	}

	amount := money.Round2(budget.FinalAmount)
	if err := u.prepareCharge(payload, budget); err != nil {
		log.Printf("[payment][usecase] charge incomplete budget_id=%s err=%v", budgetID, err)
		return entities.BillingPayment{}, err
	}

	var res chargeResult
	if u.opts.Mock {
		res, err = u.simulate(payload)
	} else {
		res, err = u.send(ctx, payload)
	}
	if err != nil {
		log.Printf("[payment][usecase] charge failed budget_id=%s err=%v", budgetID, err)
		return entities.BillingPayment{}, err
	}

	p := entities.BillingPayment{
		ID:               res.id,
		BudgetID:         budget.ID,
		BudgetNumber:     budget.SequentialNumber,
		Amount:           amount,
		Method:           stringField(payload, "payment_method_id"),
		Status:           entities.PaymentStatusFromProvider(res.status),
		ProviderStatus:   res.status,
		Simulated:        u.opts.Mock,
		Date:             u.now().UTC(),
		ProviderResponse: res.raw,
	}
	created, err := u.repo.Create(ctx, p)
	if err != nil {
		log.Printf("[payment][usecase] store failed budget_id=%s payment_id=%s err=%v", budgetID, p.ID, err)
		return entities.BillingPayment{}, errs.Persistence(err)
	}
	log.Printf("[payment][usecase] charge stored budget_id=%s number=%s payment_id=%s status=%s amount=%s",
		budgetID, created.BudgetNumber, created.ID, created.Status, money.Format2(created.Amount))

	if !created.Settles() {
		return created, nil
	}
	if _, err := u.budgets.TransitionStatus(ctx, budgetID, entities.BudgetStatusPaid); err != nil {
		log.Printf("[payment][usecase] settle failed budget_id=%s payment_id=%s err=%v", budgetID, created.ID, err)
		return created, fmt.Errorf("%w: %v", ErrBudgetNotSettled, err)
	}
	return created, nil
}

// decodePayload accepts a JSON object. In mock mode anything unreadable
// degrades to an empty charge.
func (u *BillingPaymentUseCase) decodePayload(raw json.RawMessage) (map[string]any, error) {
	var m map[string]any
	if len(raw) > 0 && json.Valid(raw) {
		if err := json.Unmarshal(raw, &m); err == nil && m != nil {
			return m, nil
		}
	}
	if u.opts.Mock {
		return map[string]any{}, nil
	}
	return nil, ErrInvalidMPPayload
}

// prepareCharge fills what Mercado Pago needs from the stored budget. The
// amount is never taken from the caller.
func (u *BillingPaymentUseCase) prepareCharge(m map[string]any, b entities.Budget) error {
	if !u.opts.Mock {
		if stringField(m, "payment_method_id") == "" {
			return ErrInvalidMPPayload
		}
		u.normalizeSandboxPayerFromUserID(m)
		u.ensurePayerDefaults(m)
		if !hasPayer(m) {
			return ErrInvalidMPPayload
		}
	}
	if _, ok := m["external_reference"]; !ok {
		m["external_reference"] = b.ID
	}
	if _, ok := m["description"]; !ok {
		m["description"] = fmt.Sprintf("Orçamento %s - %s", b.SequentialNumber, b.Title)
	}
	m["transaction_amount"] = money.Round2(b.FinalAmount).InexactFloat64()
	return nil
}

func (u *BillingPaymentUseCase) send(ctx context.Context, m map[string]any) (chargeResult, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return chargeResult{}, err
	}
	id, status, raw, err := u.gateway.CreatePayment(ctx, body)
	if err != nil {
		return chargeResult{}, classifyGatewayError(err)
	}
	return chargeResult{id: id, status: status, raw: raw}, nil
}

// simulate echoes the charge back as an accredited payment.
func (u *BillingPaymentUseCase) simulate(m map[string]any) (chargeResult, error) {
	now := u.now().UTC()
	id := strconv.FormatInt(now.UnixNano(), 10)
	resp := make(map[string]any, len(m)+5)
	for k, v := range m {
		resp[k] = v
	}
	stamp := now.Format(time.RFC3339Nano)
	resp["id"] = id
	resp["status"] = "approved"
	resp["status_detail"] = "accredited"
	resp["date_created"] = stamp
	resp["date_approved"] = stamp
	raw, err := json.Marshal(resp)
	if err != nil {
		return chargeResult{}, err
	}
	return chargeResult{id: id, status: "approved", raw: raw}, nil
}

// gatewayFailures maps fragments of Mercado Pago error bodies to our errors.
// Order matters: the first match wins.
var gatewayFailures = []struct {
	target  error
	needles []string
}{
	{ErrPaymentGatewayCustomerNotFound, []string{"customer not found", `"code":2002`}},
	{ErrPaymentGatewayInvalidUsers, []string{"invalid users involved", `"code":2034`}},
	{ErrPaymentGatewayUnauthorized, []string{`"error":"unauthorized"`, `"status":401`}},
	{ErrPaymentGatewayBadRequest, []string{`"error":"bad_request"`, `"status":400`}},
}

func classifyGatewayError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, f := range gatewayFailures {
		for _, n := range f.needles {
			if strings.Contains(msg, n) {
				return f.target
			}
		}
	}
	return err
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func payerOf(m map[string]any) (map[string]any, bool) {
	payer, ok := m["payer"].(map[string]any)
	return payer, ok
}

func payerID(payer map[string]any) string {
	v, ok := payer["id"]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func hasPayer(m map[string]any) bool {
	payer, ok := payerOf(m)
	if !ok {
		return false
	}
	return stringField(payer, "email") != "" || payerID(payer) != ""
}

func (u *BillingPaymentUseCase) ensurePayerDefaults(m map[string]any) {
	if m["payer"] == nil {
		m["payer"] = map[string]any{}
	}
	payer, ok := payerOf(m)
	if !ok {
		return
	}
	if _, ok := payer["type"]; !ok {
		payer["type"] = "customer"
	}
	if payerID(payer) != "" || stringField(payer, "email") != "" {
		return
	}
	switch {
	case strings.TrimSpace(u.opts.TestPayerEmail) != "":
		payer["email"] = strings.TrimSpace(u.opts.TestPayerEmail)
	case u.opts.sandbox():
		payer["email"] = sandboxFallbackPayer
	}
}

// normalizeSandboxPayerFromUserID swaps the configured sandbox buyer id for
// its email, which is what the Payments API expects in test mode.
func (u *BillingPaymentUseCase) normalizeSandboxPayerFromUserID(m map[string]any) {
	payer, ok := payerOf(m)
	if !ok || !u.opts.sandbox() || stringField(payer, "email") != "" {
		return
	}
	userID := strings.TrimSpace(u.opts.TestPayerUserID)
	email := strings.TrimSpace(u.opts.TestPayerEmail)
	if userID == "" || email == "" || payerID(payer) != userID {
		return
	}
	payer["email"] = email
	delete(payer, "id")
	log.Printf("[payment][usecase] sandbox payer id mapped to email")
}

func (u *BillingPaymentUseCase) GetByID(ctx context.Context, id string) (entities.BillingPayment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.BillingPayment{}, fmt.Errorf("%w: invalid payment id", errs.ErrValidation)
	}

	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.BillingPayment{}, errs.Persistence(err)
	}
	if p.ID == "" {
		return entities.BillingPayment{}, ErrBillingPaymentNotFound
	}
	return p, nil
}

// ListByBudgetID returns the budget's payments, newest first.
func (u *BillingPaymentUseCase) ListByBudgetID(ctx context.Context, budgetID string) ([]entities.BillingPayment, error) {
	budgetID = strings.TrimSpace(budgetID)
	if budgetID == "" {
		return nil, ErrInvalidPaymentBudgetID
	}
	list, err := u.repo.ListByBudgetID(ctx, budgetID)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

func (u *BillingPaymentUseCase) Latest(ctx context.Context, budgetID string) (entities.BillingPayment, error) {
	list, err := u.ListByBudgetID(ctx, budgetID)
	if err != nil {
		return entities.BillingPayment{}, err
	}
	if len(list) == 0 {
		return entities.BillingPayment{}, ErrBillingPaymentNotFound
	}
	return list[0], nil
}
