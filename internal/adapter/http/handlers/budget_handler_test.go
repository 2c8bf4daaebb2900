package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"marcenaria_mdf/internal/adapter/http/handlers/mocks"
	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/errs"
	"marcenaria_mdf/internal/domain/money"
	"marcenaria_mdf/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func newBudgetRouter(t *testing.T) (*gin.Engine, *mocks.MockIBudgetUseCase, *mocks.MockIExportUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIBudgetUseCase(ctrl)
	export := mocks.NewMockIExportUseCase(ctrl)
	h := NewBudgetHandler(uc, export)

	r := gin.New()
	r.POST("/v1/budgets", h.CreateBudget)
	r.GET("/v1/budgets", h.ListBudgets)
	r.GET("/v1/budgets/:id", h.GetBudget)
	r.PATCH("/v1/budgets/:id", h.UpdateBudget)
	r.PATCH("/v1/budgets/:id/status", h.UpdateBudgetStatus)
	r.DELETE("/v1/budgets/:id", h.DeleteBudget)
	r.GET("/v1/budgets/:id/whatsapp", h.ShareBudget)
	r.GET("/v1/budgets/:id/document", h.DownloadBudgetDocument)
	return r, uc, export
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("invalid payload", func(t *testing.T) {
		r, _, _ := newBudgetRouter(t)
		w := serve(r, http.MethodPost, "/v1/budgets", `{"items":[]}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("maps request into use case input", func(t *testing.T) {
		r, uc, _ := newBudgetRouter(t)

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, in usecase.CreateBudgetInput) (usecase.BudgetResult, error) {
			if in.Title != "Cozinha" || in.CustomerID != "cus-1" || !in.Notify {
				t.Fatalf("unexpected input: %+v", in)
			}
			if len(in.Items) != 1 || !in.Items[0].Quantity.Equal(decimal.RequireFromString("2.5")) {
				t.Fatalf("unexpected items: %+v", in.Items)
			}
			if in.Discount.Type != entities.DiscountTypePercent || !in.Discount.Value.Equal(decimal.NewFromInt(10)) {
				t.Fatalf("unexpected discount: %+v", in.Discount)
			}
			totals, err := money.Price(in.Items, in.Discount)
			if err != nil {
				t.Fatalf("price: %v", err)
			}
			return usecase.BudgetResult{
				Budget: entities.Budget{
					ID: "bud-1", SequentialNumber: "2026-001", Title: in.Title, Items: totals.Items,
					SubtotalAmount: totals.Subtotal, Discount: in.Discount, FinalAmount: totals.Final, Status: entities.BudgetStatusDraft,
				},
				Warnings: []usecase.NotificationWarning{{Channel: "email", Message: "customer has no email"}},
			}, nil
		})

		w := serve(r, http.MethodPost, "/v1/budgets", `{
			"title":"Cozinha","customer_id":"cus-1","notify":true,
			"items":[{"description":"Armário","unit_type":"length","quantity":"2.5","unit_price":100}],
			"discount":{"type":"percent","value":10}
		}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["sequential_number"] != "2026-001" || body["final_amount"] != "225" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
		if warnings, _ := body["warnings"].([]any); len(warnings) != 1 {
			t.Fatalf("expected one warning, got %s", w.Body.String())
		}
	})

	t.Run("validation error is returned verbatim", func(t *testing.T) {
		r, uc, _ := newBudgetRouter(t)
		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(usecase.BudgetResult{}, money.ErrOutOfRange)

		w := serve(r, http.MethodPost, "/v1/budgets", `{"title":"x","items":[],"discount":{"type":"percent","value":150}}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var body map[string]string
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["code"] != "VALIDATION_ERROR" || body["detail"] != money.ErrOutOfRange.Error() {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}

func TestBudgetHandler_ReadAndDelete(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		r, uc, _ := newBudgetRouter(t)
		uc.EXPECT().List(gomock.Any()).Return([]entities.Budget{{ID: "b2"}, {ID: "b1"}}, nil)

		w := serve(r, http.MethodGet, "/v1/budgets", "")
		var body []map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if w.Code != http.StatusOK || len(body) != 2 || body[0]["id"] != "b2" {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("get not found", func(t *testing.T) {
		r, uc, _ := newBudgetRouter(t)
		uc.EXPECT().Get(gomock.Any(), "missing").Return(entities.Budget{}, usecase.ErrBudgetNotFound)

		if w := serve(r, http.MethodGet, "/v1/budgets/missing", ""); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("get persistence failure", func(t *testing.T) {
		r, uc, _ := newBudgetRouter(t)
		uc.EXPECT().Get(gomock.Any(), "bud-1").Return(entities.Budget{}, errs.Persistence(errors.New("disk I/O error")))

		w := serve(r, http.MethodGet, "/v1/budgets/bud-1", "")
		if w.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", w.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		r, uc, _ := newBudgetRouter(t)
		uc.EXPECT().Delete(gomock.Any(), "bud-1").Return(nil)

		if w := serve(r, http.MethodDelete, "/v1/budgets/bud-1", ""); w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		r, uc, _ := newBudgetRouter(t)
		uc.EXPECT().Delete(gomock.Any(), "bud-1").Return(usecase.ErrBudgetNotFound)

		if w := serve(r, http.MethodDelete, "/v1/budgets/bud-1", ""); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestBudgetHandler_UpdateBudget(t *testing.T) {
	r, uc, _ := newBudgetRouter(t)
	uc.EXPECT().Update(gomock.Any(), "bud-1", gomock.Any()).DoAndReturn(func(_ any, _ string, p usecase.BudgetPatch) (usecase.BudgetResult, error) {
		if p.Title == nil || *p.Title != "Sala" {
			t.Fatalf("expected title patch, got %+v", p)
		}
		if p.Status == nil || *p.Status != entities.BudgetStatusSent {
			t.Fatalf("expected normalized status, got %+v", p.Status)
		}
		if p.Items != nil || p.Discount != nil || p.CustomerID != nil {
			t.Fatalf("absent fields must stay nil: %+v", p)
		}
		return usecase.BudgetResult{Budget: entities.Budget{ID: "bud-1", Title: "Sala", Status: entities.BudgetStatusSent}}, nil
	})

	w := serve(r, http.MethodPatch, "/v1/budgets/bud-1", `{"title":"Sala","status":" SENT "}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestBudgetHandler_UpdateBudgetStatus(t *testing.T) {
	t.Run("missing status", func(t *testing.T) {
		r, _, _ := newBudgetRouter(t)
		if w := serve(r, http.MethodPatch, "/v1/budgets/bud-1/status", `{}`); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid transition", func(t *testing.T) {
		r, uc, _ := newBudgetRouter(t)
		uc.EXPECT().TransitionStatus(gomock.Any(), "bud-1", entities.BudgetStatusPaid).
			Return(usecase.BudgetResult{}, fmt.Errorf("%w: draft -> paid", entities.ErrInvalidTransition))

		w := serve(r, http.MethodPatch, "/v1/budgets/bud-1/status", `{"status":"paid"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("approved", func(t *testing.T) {
		r, uc, _ := newBudgetRouter(t)
		uc.EXPECT().TransitionStatus(gomock.Any(), "bud-1", entities.BudgetStatusApproved).
			Return(usecase.BudgetResult{Budget: entities.Budget{ID: "bud-1", Status: entities.BudgetStatusApproved}}, nil)

		w := serve(r, http.MethodPatch, "/v1/budgets/bud-1/status", `{"status":"approved"}`)
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if w.Code != http.StatusOK || body["status"] != "approved" {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestBudgetHandler_ShareAndDocument(t *testing.T) {
	t.Run("share link", func(t *testing.T) {
		r, uc, _ := newBudgetRouter(t)
		uc.EXPECT().ShareLink(gomock.Any(), "bud-1").Return(entities.LinkResult{Success: true, Link: "https://wa.me/5511987654321?text=x", Message: "ok"})

		w := serve(r, http.MethodGet, "/v1/budgets/bud-1/whatsapp", "")
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if w.Code != http.StatusOK || body["success"] != true || body["link"] == "" {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("document download", func(t *testing.T) {
		r, _, export := newBudgetRouter(t)
		export.EXPECT().BudgetDocument(gomock.Any(), "bud-1").Return([]byte("ORÇAMENTO"), "orcamento-2026-001.txt", nil)

		w := serve(r, http.MethodGet, "/v1/budgets/bud-1/document", "")
		if w.Code != http.StatusOK || w.Body.String() != "ORÇAMENTO" {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
		if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="orcamento-2026-001.txt"` {
			t.Fatalf("unexpected disposition: %s", got)
		}
	})
}
