package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/errs"
	mock_interfaces "marcenaria_mdf/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

const validMPPayload = `{"payment_method_id":"pix","payer":{"email":"x@test.com"}}`

var chargedAt = time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)

type paymentFixture struct {
	repo       *mock_interfaces.MockIBillingPaymentRepository
	budgetRepo *mock_interfaces.MockIBudgetRepository
	gateway    *mock_interfaces.MockIPaymentGateway
	uc         *BillingPaymentUseCase
}

func newPaymentFixture(ctrl *gomock.Controller, opts PaymentOptions) paymentFixture {
	f := paymentFixture{
		repo:       mock_interfaces.NewMockIBillingPaymentRepository(ctrl),
		budgetRepo: mock_interfaces.NewMockIBudgetRepository(ctrl),
		gateway:    mock_interfaces.NewMockIPaymentGateway(ctrl),
	}
	f.uc = NewBillingPaymentUseCase(f.repo, NewBudgetUseCase(f.budgetRepo, nil, nil), f.gateway, opts)
	f.uc.now = func() time.Time { return chargedAt }
	return f
}

// expectSettlement wires the approved -> paid transition done after a charge.
func (f paymentFixture) expectSettlement(t *testing.T, final string) {
	f.budgetRepo.EXPECT().GetByID(gomock.Any(), "b-1").Return(approvedBudget(final), nil)
	f.budgetRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b entities.Budget) (entities.Budget, error) {
		if b.Status != entities.BudgetStatusPaid {
			t.Fatalf("expected budget to be paid, got %s", b.Status)
		}
		return b, nil
	})
}

func storeAsIs(_ context.Context, p entities.BillingPayment) (entities.BillingPayment, error) {
	return p, nil
}

func approvedBudget(final string) entities.Budget {
	b := storedBudget(entities.BudgetStatusApproved)
	b.FinalAmount = dec(final)
	return b
}

func TestBillingPaymentUseCase_CreateAndApprove_RejectsBeforeLoading(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)

	cases := []struct {
		name     string
		uc       *BillingPaymentUseCase
		budgetID string
		payload  string
		want     error
	}{
		{"blank budget id", NewBillingPaymentUseCase(nil, nil, nil, PaymentOptions{}), " ", `{}`, ErrInvalidPaymentBudgetID},
		{"empty payload", NewBillingPaymentUseCase(nil, nil, nil, PaymentOptions{}), "b-1", ``, ErrInvalidMPPayload},
		{"broken json", NewBillingPaymentUseCase(nil, nil, nil, PaymentOptions{}), "b-1", `{`, ErrInvalidMPPayload},
		{"array payload", NewBillingPaymentUseCase(nil, nil, nil, PaymentOptions{}), "b-1", `[]`, ErrInvalidMPPayload},
		{"no gateway outside mock mode", NewBillingPaymentUseCase(nil, nil, nil, PaymentOptions{}), "b-1", validMPPayload, ErrPaymentGatewayNotConfigured},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.uc.CreateAndApprove(context.Background(), tc.budgetID, json.RawMessage(tc.payload))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("budget use case missing", func(t *testing.T) {
		uc := NewBillingPaymentUseCase(nil, nil, gateway, PaymentOptions{})
		_, err := uc.CreateAndApprove(context.Background(), "b-1", json.RawMessage(validMPPayload))
		if err == nil || err.Error() != "budget use case not configured" {
			t.Fatalf("expected budget use case not configured error, got %v", err)
		}
	})
}

func TestBillingPaymentUseCase_CreateAndApprove_BudgetState(t *testing.T) {
	cases := []struct {
		name   string
		budget entities.Budget
		err    error
		want   error
	}{
		{name: "lookup fails", err: errors.New("db"), want: errs.ErrPersistence},
		{name: "unknown budget", want: ErrBudgetNotFound},
		{name: "still sent", budget: storedBudget(entities.BudgetStatusSent), want: ErrBudgetNotApproved},
		{name: "already paid", budget: storedBudget(entities.BudgetStatusPaid), want: ErrBudgetNotApproved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newPaymentFixture(ctrl, PaymentOptions{})
			f.budgetRepo.EXPECT().GetByID(gomock.Any(), "b-1").Return(tc.budget, tc.err)

			_, err := f.uc.CreateAndApprove(context.Background(), "b-1", json.RawMessage(validMPPayload))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBillingPaymentUseCase_CreateAndApprove_IncompleteCharge(t *testing.T) {
	for name, payload := range map[string]string{
		"missing payment_method_id": `{"payer":{"email":"x@test.com"}}`,
		"missing payer":             `{"payment_method_id":"pix"}`,
		"payer is not an object":    `{"payment_method_id":"pix","payer":"x@test.com"}`,
	} {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newPaymentFixture(ctrl, PaymentOptions{})
			f.budgetRepo.EXPECT().GetByID(gomock.Any(), "b-1").Return(approvedBudget("10"), nil)

			_, err := f.uc.CreateAndApprove(context.Background(), "b-1", json.RawMessage(payload))
			if !errors.Is(err, ErrInvalidMPPayload) {
				t.Fatalf("expected ErrInvalidMPPayload, got %v", err)
			}
		})
	}
}

func TestBillingPaymentUseCase_CreateAndApprove_GatewayFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"customer not found", errors.New(`{"code":2002}`), ErrPaymentGatewayCustomerNotFound},
		{"invalid users", errors.New(`Invalid users involved`), ErrPaymentGatewayInvalidUsers},
		{"unauthorized", errors.New(`{"error":"unauthorized"}`), ErrPaymentGatewayUnauthorized},
		{"bad request", errors.New(`{"status":400}`), ErrPaymentGatewayBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newPaymentFixture(ctrl, PaymentOptions{})
			f.budgetRepo.EXPECT().GetByID(gomock.Any(), "b-1").Return(approvedBudget("10"), nil)
			f.gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("", "", nil, tc.err)

			_, err := f.uc.CreateAndApprove(context.Background(), "b-1", json.RawMessage(validMPPayload))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("unrecognised error passes through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newPaymentFixture(ctrl, PaymentOptions{})
		boom := errors.New("connection reset")
		f.budgetRepo.EXPECT().GetByID(gomock.Any(), "b-1").Return(approvedBudget("10"), nil)
		f.gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("", "", nil, boom)

		_, err := f.uc.CreateAndApprove(context.Background(), "b-1", json.RawMessage(validMPPayload))
		if !errors.Is(err, boom) {
			t.Fatalf("expected the gateway error, got %v", err)
		}
	})
}

func TestBillingPaymentUseCase_CreateAndApprove_ChargesTheBudget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPaymentFixture(ctrl, PaymentOptions{
		AccessToken:     "TEST-token",
		TestPayerUserID: "123",
		TestPayerEmail:  "sandbox@test.com",
	})

	f.budgetRepo.EXPECT().GetByID(gomock.Any(), "b-1").Return(approvedBudget("77.2"), nil)
	f.gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, payload json.RawMessage) (string, string, json.RawMessage, error) {
			var body map[string]any
			if err := json.Unmarshal(payload, &body); err != nil {
				t.Fatalf("payload should be valid json: %v", err)
			}
			if body["external_reference"] != "b-1" {
				t.Fatalf("external_reference not set: %v", body)
			}
			if body["description"] != "Orçamento 2026-001 - Cozinha planejada" {
				t.Fatalf("description not set: %v", body["description"])
			}
			if body["transaction_amount"] != 77.2 {
				t.Fatalf("amount must come from the budget, got %v", body["transaction_amount"])
			}
			if payer := body["payer"].(map[string]any); payer["email"] != "sandbox@test.com" || payer["id"] != nil {
				t.Fatalf("expected sandbox payer mapping, got %v", payer)
			}
			return "9001", "approved", json.RawMessage(`{"id":9001}`), nil
		},
	)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p entities.BillingPayment) (entities.BillingPayment, error) {
		if p.ID != "9001" || p.BudgetID != "b-1" || p.BudgetNumber != "2026-001" {
			t.Fatalf("unexpected identity: %+v", p)
		}
		if !p.Amount.Equal(dec("77.2")) || p.Method != "pix" || p.Simulated {
			t.Fatalf("unexpected charge details: %+v", p)
		}
		if !p.Date.Equal(chargedAt) {
			t.Fatalf("unexpected date %v", p.Date)
		}
		return p, nil
	})
	f.expectSettlement(t, "77.2")

	// caller-supplied amount is ignored
	res, err := f.uc.CreateAndApprove(context.Background(), "b-1",
		json.RawMessage(`{"payment_method_id":"pix","transaction_amount":1,"payer":{"id":"123"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != entities.PaymentStatusApproved || res.ProviderStatus != "approved" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBillingPaymentUseCase_CreateAndApprove_ProviderStatus(t *testing.T) {
	for providerStatus, want := range map[string]entities.PaymentStatus{
		"rejected":   entities.PaymentStatusDenied,
		"in_process": entities.PaymentStatusPending,
		"authorized": entities.PaymentStatusPending,
	} {
		t.Run(providerStatus, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newPaymentFixture(ctrl, PaymentOptions{})
			f.budgetRepo.EXPECT().GetByID(gomock.Any(), "b-1").Return(approvedBudget("10"), nil)
			f.gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("9002", providerStatus, json.RawMessage(`{}`), nil)
			f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(storeAsIs)

			res, err := f.uc.CreateAndApprove(context.Background(), "b-1", json.RawMessage(validMPPayload))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Status != want || res.ProviderStatus != providerStatus {
				t.Fatalf("expected %s, got %+v", want, res)
			}
		})
	}
}

func TestBillingPaymentUseCase_CreateAndApprove_MockMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPaymentFixture(ctrl, PaymentOptions{Mock: true})

	f.budgetRepo.EXPECT().GetByID(gomock.Any(), "b-1").Return(approvedBudget("10"), nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p entities.BillingPayment) (entities.BillingPayment, error) {
		var resp map[string]any
		if err := json.Unmarshal(p.ProviderResponse, &resp); err != nil {
			t.Fatalf("simulated response not json: %v", err)
		}
		if resp["external_reference"] != "b-1" || resp["transaction_amount"] != float64(10) || resp["status_detail"] != "accredited" {
			t.Fatalf("unexpected simulated response: %v", resp)
		}
		if !p.Simulated || p.ID == "" {
			t.Fatalf("expected a simulated payment, got %+v", p)
		}
		return p, nil
	})
	f.expectSettlement(t, "10")

	// garbage body is tolerated when simulating
	res, err := f.uc.CreateAndApprove(context.Background(), "b-1", json.RawMessage(`not json`))
	if err != nil || res.Status != entities.PaymentStatusApproved {
		t.Fatalf("unexpected result err=%v res=%+v", err, res)
	}
}

func TestBillingPaymentUseCase_CreateAndApprove_AfterCharge(t *testing.T) {
	t.Run("store failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newPaymentFixture(ctrl, PaymentOptions{})
		f.budgetRepo.EXPECT().GetByID(gomock.Any(), "b-1").Return(approvedBudget("11"), nil)
		f.gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("9003", "approved", json.RawMessage(`{}`), nil)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.BillingPayment{}, errors.New("db-create"))

		_, err := f.uc.CreateAndApprove(context.Background(), "b-1", json.RawMessage(validMPPayload))
		if !errors.Is(err, errs.ErrPersistence) {
			t.Fatalf("expected persistence error, got %v", err)
		}
	})

	t.Run("settlement failure keeps the recorded payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newPaymentFixture(ctrl, PaymentOptions{})
		f.budgetRepo.EXPECT().GetByID(gomock.Any(), "b-1").Return(approvedBudget("11"), nil).Times(2)
		f.gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("9004", "approved", json.RawMessage(`{}`), nil)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(storeAsIs)
		f.budgetRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(entities.Budget{}, errors.New("db-update"))

		res, err := f.uc.CreateAndApprove(context.Background(), "b-1", json.RawMessage(validMPPayload))
		if !errors.Is(err, ErrBudgetNotSettled) {
			t.Fatalf("expected ErrBudgetNotSettled, got %v", err)
		}
		if res.ID != "9004" {
			t.Fatalf("expected recorded payment, got %+v", res)
		}
	})
}

func TestBillingPaymentUseCase_Queries(t *testing.T) {
	t.Run("GetByID blank", func(t *testing.T) {
		uc := NewBillingPaymentUseCase(nil, nil, nil, PaymentOptions{})
		if _, err := uc.GetByID(context.Background(), ""); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("GetByID", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBillingPaymentRepository(ctrl)
		uc := NewBillingPaymentUseCase(repo, nil, nil, PaymentOptions{})
		repo.EXPECT().GetByID(gomock.Any(), "missing").Return(entities.BillingPayment{}, nil)
		repo.EXPECT().GetByID(gomock.Any(), "id-1").Return(entities.BillingPayment{ID: "id-1"}, nil)

		if _, err := uc.GetByID(context.Background(), "missing"); !errors.Is(err, ErrBillingPaymentNotFound) {
			t.Fatalf("expected ErrBillingPaymentNotFound, got %v", err)
		}
		res, err := uc.GetByID(context.Background(), " id-1 ")
		if err != nil || res.ID != "id-1" {
			t.Fatalf("unexpected result err=%v res=%+v", err, res)
		}
	})

	t.Run("ListByBudgetID blank", func(t *testing.T) {
		uc := NewBillingPaymentUseCase(nil, nil, nil, PaymentOptions{})
		if _, err := uc.ListByBudgetID(context.Background(), " "); !errors.Is(err, ErrInvalidPaymentBudgetID) {
			t.Fatalf("expected ErrInvalidPaymentBudgetID, got %v", err)
		}
	})

	t.Run("Latest", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBillingPaymentRepository(ctrl)
		uc := NewBillingPaymentUseCase(repo, nil, nil, PaymentOptions{})
		repo.EXPECT().ListByBudgetID(gomock.Any(), "b-1").Return([]entities.BillingPayment{
			{ID: "old", Date: chargedAt.Add(-time.Hour)},
			{ID: "new", Date: chargedAt},
		}, nil)
		repo.EXPECT().ListByBudgetID(gomock.Any(), "b-2").Return(nil, nil)

		res, err := uc.Latest(context.Background(), " b-1 ")
		if err != nil || res.ID != "new" {
			t.Fatalf("unexpected result err=%v res=%+v", err, res)
		}
		if _, err := uc.Latest(context.Background(), "b-2"); !errors.Is(err, ErrBillingPaymentNotFound) {
			t.Fatalf("expected ErrBillingPaymentNotFound, got %v", err)
		}
	})
}

func TestPayerHandling(t *testing.T) {
	t.Run("hasPayer", func(t *testing.T) {
		for _, m := range []map[string]any{{}, {"payer": "x"}, {"payer": map[string]any{}}, {"payer": map[string]any{"id": nil}}} {
			if hasPayer(m) {
				t.Fatalf("expected no payer in %v", m)
			}
		}
		if !hasPayer(map[string]any{"payer": map[string]any{"email": "a@b.com"}}) {
			t.Fatalf("expected payer by email")
		}
		if !hasPayer(map[string]any{"payer": map[string]any{"id": 10}}) {
			t.Fatalf("expected payer by numeric id")
		}
	})

	t.Run("ensurePayerDefaults", func(t *testing.T) {
		m := map[string]any{}
		NewBillingPaymentUseCase(nil, nil, nil, PaymentOptions{}).ensurePayerDefaults(m)
		if payer := m["payer"].(map[string]any); payer["type"] != "customer" || payer["email"] != nil {
			t.Fatalf("unexpected defaults: %v", payer)
		}

		m = map[string]any{"payer": map[string]any{}}
		NewBillingPaymentUseCase(nil, nil, nil, PaymentOptions{TestPayerEmail: " custom@test.com "}).ensurePayerDefaults(m)
		if m["payer"].(map[string]any)["email"] != "custom@test.com" {
			t.Fatalf("expected configured email fallback")
		}

		m = map[string]any{"payer": map[string]any{}}
		NewBillingPaymentUseCase(nil, nil, nil, PaymentOptions{AccessToken: "TEST-123"}).ensurePayerDefaults(m)
		if m["payer"].(map[string]any)["email"] != sandboxFallbackPayer {
			t.Fatalf("expected sandbox fallback email")
		}

		m = map[string]any{"payer": map[string]any{"id": "55"}}
		NewBillingPaymentUseCase(nil, nil, nil, PaymentOptions{AccessToken: "TEST-123"}).ensurePayerDefaults(m)
		if _, ok := m["payer"].(map[string]any)["email"]; ok {
			t.Fatalf("payer id alone is enough")
		}
	})

	t.Run("normalizeSandboxPayerFromUserID", func(t *testing.T) {
		sandbox := PaymentOptions{AccessToken: "TEST-123", TestPayerUserID: "123", TestPayerEmail: "sandbox@test.com"}
		cases := []struct {
			name   string
			opts   PaymentOptions
			payer  map[string]any
			mapped bool
		}{
			{"production token", PaymentOptions{AccessToken: "APP-123", TestPayerUserID: "123", TestPayerEmail: "sandbox@test.com"}, map[string]any{"id": "123"}, false},
			{"sandbox without config", PaymentOptions{AccessToken: "TEST-123"}, map[string]any{"id": "123"}, false},
			{"other buyer", sandbox, map[string]any{"id": "999"}, false},
			{"configured buyer", sandbox, map[string]any{"id": "123"}, true},
			{"numeric id", sandbox, map[string]any{"id": float64(123)}, true},
		}
		for _, tc := range cases {
			m := map[string]any{"payer": tc.payer}
			NewBillingPaymentUseCase(nil, nil, nil, tc.opts).normalizeSandboxPayerFromUserID(m)
			_, hasEmail := tc.payer["email"]
			_, hasID := tc.payer["id"]
			if hasEmail != tc.mapped || hasID == tc.mapped {
				t.Fatalf("%s: unexpected payer %v", tc.name, tc.payer)
			}
		}
	})

	t.Run("classifyGatewayError", func(t *testing.T) {
		if classifyGatewayError(nil) != nil {
			t.Fatalf("nil stays nil")
		}
		if got := classifyGatewayError(errors.New(`{"error":"bad_request","status":400}`)); !errors.Is(got, ErrPaymentGatewayBadRequest) {
			t.Fatalf("expected bad request, got %v", got)
		}
		if got := classifyGatewayError(errors.New(`{"status":401}`)); !errors.Is(got, ErrPaymentGatewayUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", got)
		}
		if got := classifyGatewayError(errors.New(`{"code":2034,"status":400}`)); !errors.Is(got, ErrPaymentGatewayInvalidUsers) {
			t.Fatalf("specific causes win over the status, got %v", got)
		}
	})
}
