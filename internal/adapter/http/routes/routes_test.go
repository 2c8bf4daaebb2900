package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"marcenaria_mdf/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Port:               "8080",
		APITokens:          []string{testToken},
		DataBackend:        config.BackendSQLite,
		SQLiteDBPath:       filepath.Join(t.TempDir(), "marcenaria.db"),
		CompanyName:        "Marcenaria MDF",
		Timezone:           "UTC",
		PaymentGatewayMock: true,
	}
	require.NoError(t, cfg.Validate())

	server, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(server.app.Close)
	return server.engine
}

func call(t *testing.T, r *gin.Engine, method, path, body string, out any) int {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func TestRegister_Auth(t *testing.T) {
	r := newTestServer(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/budgets", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "UNAUTHORIZED", body["code"])
	assert.NotEmpty(t, body["detail"])
}

func TestBudgetLifecycle_SQLite(t *testing.T) {
	r := newTestServer(t)

	var customer map[string]any
	code := call(t, r, http.MethodPost, "/v1/customers", `{"name":"Ana Souza","person_type":"individual","phone":"(11) 98765-4321"}`, &customer)
	require.Equal(t, http.StatusCreated, code)
	customerID := customer["id"].(string)

	var budget map[string]any
	code = call(t, r, http.MethodPost, "/v1/budgets", `{
		"title":"Cozinha planejada","customer_id":"`+customerID+`",
		"items":[{"description":"Armário","unit_type":"unit","quantity":2,"unit_price":"45.50"}],
		"discount":{"type":"fixed","value":1}
	}`, &budget)
	require.Equal(t, http.StatusCreated, code)
	budgetID := budget["id"].(string)
	assert.True(t, strings.HasSuffix(budget["sequential_number"].(string), "-001"), budget["sequential_number"])
	assert.Equal(t, "90", budget["final_amount"])
	assert.Equal(t, "draft", budget["status"])

	var second map[string]any
	code = call(t, r, http.MethodPost, "/v1/budgets", `{"title":"Sala","items":[{"description":"Painel","unit_type":"length","quantity":"1.5","unit_price":200}]}`, &second)
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, strings.HasSuffix(second["sequential_number"].(string), "-002"), second["sequential_number"])

	var errBody map[string]string
	code = call(t, r, http.MethodPatch, "/v1/budgets/"+budgetID+"/status", `{"status":"paid"}`, &errBody)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", errBody["code"])

	code = call(t, r, http.MethodPost, "/v1/payments/"+budgetID, `{}`, nil)
	assert.Equal(t, http.StatusConflict, code)

	code = call(t, r, http.MethodPatch, "/v1/budgets/"+budgetID+"/status", `{"status":"approved"}`, &budget)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "approved", budget["status"])

	var payment map[string]any
	code = call(t, r, http.MethodPost, "/v1/payments/"+budgetID, `{}`, &payment)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "approved", payment["status"])
	assert.Equal(t, budgetID, payment["budget_id"])
	assert.Equal(t, "R$ 90,00", payment["amount_label"])
	assert.Equal(t, true, payment["simulated"])

	code = call(t, r, http.MethodGet, "/v1/budgets/"+budgetID, "", &budget)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "paid", budget["status"])

	var summary map[string]any
	code = call(t, r, http.MethodGet, "/v1/reports/summary", "", &summary)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), summary["total_budgets"])
	assert.Equal(t, float64(1), summary["total_customers"])
	assert.Equal(t, "90.00", summary["paid_revenue"])

	code = call(t, r, http.MethodDelete, "/v1/customers/"+customerID, "", nil)
	require.Equal(t, http.StatusNoContent, code)

	code = call(t, r, http.MethodGet, "/v1/budgets/"+budgetID, "", &budget)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, customerID, budget["customer_id"])

	code = call(t, r, http.MethodDelete, "/v1/budgets/"+budgetID, "", nil)
	assert.Equal(t, http.StatusNoContent, code)
	code = call(t, r, http.MethodGet, "/v1/budgets/"+budgetID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_ServesSwaggerAndShutsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Port:         "0",
		APITokens:    []string{testToken},
		DataBackend:  config.BackendSQLite,
		SQLiteDBPath: filepath.Join(t.TempDir(), "marcenaria.db"),
		CompanyName:  "Marcenaria MDF",
		Timezone:     "UTC",
	}
	server, err := NewServer(cfg)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/budgets")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
