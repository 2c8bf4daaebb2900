package httpgateway_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"marcenaria_mdf/internal/adapter/gateway/httpgateway"
	"marcenaria_mdf/internal/adapter/http/handlers"
	"marcenaria_mdf/internal/adapter/http/routes"
	"marcenaria_mdf/internal/adapter/persistence/repository"
	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/errs"
	"marcenaria_mdf/internal/infrastructure/database"
	"marcenaria_mdf/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type remote struct {
	baseURL   string
	client    *httpgateway.Client
	session   *httpgateway.Session
	budgets   *usecase.BudgetUseCase
	customers *usecase.CustomerUseCase
	hits      *int64
}

// newRemote starts the real API on SQLite and points client-side use cases at it.
func newRemote(t *testing.T) remote {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	budgetRepo := repository.NewBudgetSQLiteRepository(db, time.UTC)
	customerRepo := repository.NewCustomerSQLiteRepository(db)
	serverCustomers := usecase.NewCustomerUseCase(customerRepo, nil)
	serverBudgets := usecase.NewBudgetUseCase(budgetRepo, customerRepo, nil)
	export := usecase.NewExportUseCase(serverBudgets, serverCustomers, nil, "Marcenaria MDF", time.UTC)

	var hits int64
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		atomic.AddInt64(&hits, 1)
		c.Next()
	})
	routes.Register(engine, []string{"secret"}, routes.Handlers{
		Budgets:   handlers.NewBudgetHandler(serverBudgets, export),
		Customers: handlers.NewCustomerHandler(serverCustomers),
	})
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	session := httpgateway.NewSession("secret", nil)
	client := httpgateway.NewClient(srv.URL+"/v1", session, 5*time.Second)
	return remote{
		baseURL:   srv.URL + "/v1",
		client:    client,
		session:   session,
		budgets:   usecase.NewBudgetUseCase(client.Budgets(), client.Customers(), nil),
		customers: usecase.NewCustomerUseCase(client.Customers(), nil),
		hits:      &hits,
	}
}

func TestGateway_BudgetLifecycle(t *testing.T) {
	r := newRemote(t)
	ctx := context.Background()

	customer, err := r.customers.Create(ctx, usecase.CustomerInput{
		Name:       "Ana Souza",
		PersonType: entities.PersonTypeIndividual,
		Phone:      "(11) 98765-4321",
	})
	require.NoError(t, err)
	require.NotEmpty(t, customer.ID)
	assert.Equal(t, "11987654321", customer.Phone)

	created, err := r.budgets.Create(ctx, usecase.CreateBudgetInput{
		Title:      "Cozinha planejada",
		CustomerID: customer.ID,
		Items: []entities.BudgetItem{
			{Description: "Armário", UnitType: entities.UnitTypeUnit, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50)},
		},
		Discount: entities.Discount{Type: entities.DiscountTypeFixed, Value: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)
	b := created.Budget
	assert.True(t, strings.HasSuffix(b.SequentialNumber, "-001"), b.SequentialNumber)
	assert.True(t, b.FinalAmount.Equal(decimal.NewFromInt(90)))
	assert.Equal(t, entities.BudgetStatusDraft, b.Status)

	cached, ok := r.budgets.Cached(b.ID)
	require.True(t, ok)
	assert.Equal(t, b.SequentialNumber, cached.SequentialNumber)

	approved, err := r.budgets.TransitionStatus(ctx, b.ID, entities.BudgetStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, entities.BudgetStatusApproved, approved.Budget.Status)

	list, err := r.budgets.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entities.BudgetStatusApproved, list[0].Status)

	require.NoError(t, r.customers.Delete(ctx, customer.ID))
	got, err := r.budgets.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.CustomerID)

	require.NoError(t, r.budgets.Delete(ctx, b.ID))
	_, err = r.budgets.Get(ctx, b.ID)
	assert.ErrorIs(t, err, usecase.ErrBudgetNotFound)
	_, ok = r.budgets.Cached(b.ID)
	assert.False(t, ok)
}

func TestGateway_ValidationStaysLocal(t *testing.T) {
	r := newRemote(t)
	ctx := context.Background()

	_, err := r.budgets.Create(ctx, usecase.CreateBudgetInput{Title: "  "})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = r.budgets.Create(ctx, usecase.CreateBudgetInput{
		Title: "Sem itens",
		Items: []entities.BudgetItem{{Description: "x", UnitType: entities.UnitTypeUnit, Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(5)}},
	})
	assert.ErrorIs(t, err, errs.ErrValidation)

	assert.Equal(t, int64(0), atomic.LoadInt64(r.hits))
}

func TestGateway_WrongTokenTearsDownSession(t *testing.T) {
	r := newRemote(t)

	var cleared int32
	session := httpgateway.NewSession("nope", func() { atomic.AddInt32(&cleared, 1) })
	client := httpgateway.NewClient(r.baseURL, session, time.Second)
	budgets := usecase.NewBudgetUseCase(client.Budgets(), client.Customers(), nil)

	_, err := budgets.List(context.Background())
	assert.ErrorIs(t, err, errs.ErrAuth)
	assert.False(t, session.Valid())
	assert.Equal(t, int32(1), atomic.LoadInt32(&cleared))
}
