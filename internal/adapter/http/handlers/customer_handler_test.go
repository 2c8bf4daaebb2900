package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"marcenaria_mdf/internal/adapter/http/handlers/mocks"
	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/identity"
	"marcenaria_mdf/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func newCustomerRouter(t *testing.T) (*gin.Engine, *mocks.MockICustomerUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockICustomerUseCase(ctrl)
	h := NewCustomerHandler(uc)

	r := gin.New()
	r.POST("/v1/customers", h.CreateCustomer)
	r.GET("/v1/customers", h.ListCustomers)
	r.GET("/v1/customers/:id", h.GetCustomer)
	r.PATCH("/v1/customers/:id", h.UpdateCustomer)
	r.DELETE("/v1/customers/:id", h.DeleteCustomer)
	r.GET("/v1/addresses/:cep", h.LookupAddress)
	return r, uc
}

func TestCustomerHandler_CreateCustomer(t *testing.T) {
	t.Run("name is required", func(t *testing.T) {
		r, _ := newCustomerRouter(t)
		if w := serve(r, http.MethodPost, "/v1/customers", `{"email":"a@b.com"}`); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid tax id", func(t *testing.T) {
		r, uc := newCustomerRouter(t)
		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Customer{}, identity.ErrInvalidTaxID)

		w := serve(r, http.MethodPost, "/v1/customers", `{"name":"Ana","tax_id":"111.111.111-11","person_type":"individual"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("created", func(t *testing.T) {
		r, uc := newCustomerRouter(t)
		uc.EXPECT().Create(gomock.Any(), usecase.CustomerInput{Name: "Ana", Phone: "(11) 98765-4321", PersonType: entities.PersonTypeIndividual}).
			Return(entities.Customer{ID: "cus-1", Name: "Ana", Phone: "11987654321", PersonType: entities.PersonTypeIndividual}, nil)

		w := serve(r, http.MethodPost, "/v1/customers", `{"name":"Ana","phone":"(11) 98765-4321","person_type":"individual"}`)
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if w.Code != http.StatusCreated || body["id"] != "cus-1" || body["phone"] != "11987654321" {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestCustomerHandler_CRUD(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		r, uc := newCustomerRouter(t)
		uc.EXPECT().List(gomock.Any()).Return([]entities.Customer{{ID: "a"}, {ID: "b"}}, nil)

		w := serve(r, http.MethodGet, "/v1/customers", "")
		var body []map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if w.Code != http.StatusOK || len(body) != 2 {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("get missing", func(t *testing.T) {
		r, uc := newCustomerRouter(t)
		uc.EXPECT().Get(gomock.Any(), "nope").Return(entities.Customer{}, usecase.ErrCustomerNotFound)

		if w := serve(r, http.MethodGet, "/v1/customers/nope", ""); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("patch only sends present fields", func(t *testing.T) {
		r, uc := newCustomerRouter(t)
		uc.EXPECT().Update(gomock.Any(), "cus-1", gomock.Any()).DoAndReturn(func(_ any, _ string, p usecase.CustomerPatch) (entities.Customer, error) {
			if p.Email == nil || *p.Email != "ana@example.com" || p.Name != nil || p.Phone != nil {
				t.Fatalf("unexpected patch: %+v", p)
			}
			return entities.Customer{ID: "cus-1", Email: "ana@example.com"}, nil
		})

		if w := serve(r, http.MethodPatch, "/v1/customers/cus-1", `{"email":"ana@example.com"}`); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		r, uc := newCustomerRouter(t)
		uc.EXPECT().Delete(gomock.Any(), "cus-1").Return(nil)

		if w := serve(r, http.MethodDelete, "/v1/customers/cus-1", ""); w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
	})
}

func TestCustomerHandler_LookupAddress(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		r, uc := newCustomerRouter(t)
		uc.EXPECT().LookupAddress(gomock.Any(), "01310-100").
			Return(entities.Address{PostalCode: "01310100", Street: "Avenida Paulista", City: "São Paulo", State: "SP"}, nil)

		w := serve(r, http.MethodGet, "/v1/addresses/01310-100", "")
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if w.Code != http.StatusOK || body["street"] != "Avenida Paulista" {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown cep", func(t *testing.T) {
		r, uc := newCustomerRouter(t)
		uc.EXPECT().LookupAddress(gomock.Any(), "99999999").Return(entities.Address{}, nil)

		if w := serve(r, http.MethodGet, "/v1/addresses/99999999", ""); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("lookup disabled", func(t *testing.T) {
		r, uc := newCustomerRouter(t)
		uc.EXPECT().LookupAddress(gomock.Any(), "01310100").Return(entities.Address{}, usecase.ErrAddressLookupDisabled)

		if w := serve(r, http.MethodGet, "/v1/addresses/01310100", ""); w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		r, uc := newCustomerRouter(t)
		uc.EXPECT().LookupAddress(gomock.Any(), "01310100").Return(entities.Address{}, errors.New("timeout"))

		if w := serve(r, http.MethodGet, "/v1/addresses/01310100", ""); w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})
}
