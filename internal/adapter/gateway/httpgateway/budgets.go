package httpgateway

import (
	"context"
	"net/http"
	"net/url"

	"marcenaria_mdf/internal/adapter/http/dto/request"
	"marcenaria_mdf/internal/adapter/http/dto/response"
	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/usecase/interfaces"
)

type notifyKey struct{}

// WithNotify asks the server to email the customer when the budget is created.
func WithNotify(ctx context.Context, notify bool) context.Context {
	return context.WithValue(ctx, notifyKey{}, notify)
}

func notifyFrom(ctx context.Context) bool {
	v, _ := ctx.Value(notifyKey{}).(bool)
	return v
}

// BudgetRepository stores budgets through /budgets. The server owns id and
// number allocation, so Create returns the record it assigned.
type BudgetRepository struct {
	c *Client
}

var _ interfaces.IBudgetRepository = (*BudgetRepository)(nil)

func (r *BudgetRepository) Create(ctx context.Context, b entities.Budget) (entities.Budget, error) {
	req := request.CreateBudgetRequest{
		Title:             b.Title,
		CustomerID:        b.CustomerID,
		Items:             toItemRequests(b.Items),
		Discount:          toDiscountRequest(b.Discount),
		PaymentConditions: b.PaymentConditions,
		PaymentMethods:    b.PaymentMethods,
		DrawingRef:        b.DrawingRef,
		Notify:            notifyFrom(ctx),
	}
	var out response.BudgetResponse
	if err := r.c.do(ctx, http.MethodPost, "/budgets", req, &out); err != nil {
		return entities.Budget{}, err
	}
	r.c.addWarnings(out.Warnings)
	return out.ToBudget(), nil
}

func (r *BudgetRepository) GetByID(ctx context.Context, id string) (entities.Budget, error) {
	var out response.BudgetResponse
	if err := r.c.do(ctx, http.MethodGet, budgetPath(id), nil, &out); err != nil {
		if isNotFound(err) {
			return entities.Budget{}, nil
		}
		return entities.Budget{}, err
	}
	return out.ToBudget(), nil
}

func (r *BudgetRepository) List(ctx context.Context) ([]entities.Budget, error) {
	var out []response.BudgetResponse
	if err := r.c.do(ctx, http.MethodGet, "/budgets", nil, &out); err != nil {
		return nil, err
	}
	list := make([]entities.Budget, 0, len(out))
	for _, b := range out {
		list = append(list, b.ToBudget())
	}
	return list, nil
}

// Update sends only the fields that differ from the stored record.
func (r *BudgetRepository) Update(ctx context.Context, b entities.Budget) (entities.Budget, error) {
	current, err := r.GetByID(ctx, b.ID)
	if err != nil || current.ID == "" {
		return entities.Budget{}, err
	}

	patch, changed := budgetDiff(current, b)
	if !changed {
		return current, nil
	}

	var out response.BudgetResponse
	if err := r.c.do(ctx, http.MethodPatch, budgetPath(b.ID), patch, &out); err != nil {
		if isNotFound(err) {
			return entities.Budget{}, nil
		}
		return entities.Budget{}, err
	}
	r.c.addWarnings(out.Warnings)
	return out.ToBudget(), nil
}

func (r *BudgetRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := r.c.do(ctx, http.MethodDelete, budgetPath(id), nil, nil); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ShareLink asks the server for the WhatsApp link of a budget.
func (r *BudgetRepository) ShareLink(ctx context.Context, id string) (entities.LinkResult, error) {
	var out response.ShareLinkResponse
	if err := r.c.do(ctx, http.MethodGet, budgetPath(id)+"/whatsapp", nil, &out); err != nil {
		return entities.LinkResult{}, err
	}
	return entities.LinkResult(out), nil
}

func budgetPath(id string) string {
	return "/budgets/" + url.PathEscape(id)
}

func budgetDiff(current, next entities.Budget) (request.UpdateBudgetRequest, bool) {
	var p request.UpdateBudgetRequest
	changed := false

	if next.Title != current.Title {
		p.Title = &next.Title
		changed = true
	}
	if next.CustomerID != current.CustomerID {
		p.CustomerID = &next.CustomerID
		changed = true
	}
	if !sameItems(current.Items, next.Items) {
		items := toItemRequests(next.Items)
		p.Items = &items
		changed = true
	}
	if next.Discount.Type != current.Discount.Type || !next.Discount.Value.Equal(current.Discount.Value) {
		p.Discount = toDiscountRequest(next.Discount)
		changed = true
	}
	if next.Status != current.Status {
		s := string(next.Status)
		p.Status = &s
		changed = true
	}
	if next.PaymentConditions != current.PaymentConditions {
		p.PaymentConditions = &next.PaymentConditions
		changed = true
	}
	if !sameStrings(current.PaymentMethods, next.PaymentMethods) {
		methods := append([]string{}, next.PaymentMethods...)
		p.PaymentMethods = &methods
		changed = true
	}
	if next.DrawingRef != current.DrawingRef {
		p.DrawingRef = &next.DrawingRef
		changed = true
	}
	return p, changed
}

func sameItems(a, b []entities.BudgetItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Description != b[i].Description ||
			a[i].UnitType != b[i].UnitType ||
			!a[i].Quantity.Equal(b[i].Quantity) ||
			!a[i].UnitPrice.Equal(b[i].UnitPrice) {
			return false
		}
	}
	return true
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func toItemRequests(items []entities.BudgetItem) []request.BudgetItemRequest {
	out := make([]request.BudgetItemRequest, 0, len(items))
	for _, it := range items {
		out = append(out, request.BudgetItemRequest{
			Description: it.Description,
			UnitType:    it.UnitType,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return out
}

func toDiscountRequest(d entities.Discount) *request.DiscountRequest {
	return &request.DiscountRequest{Type: d.Type, Value: d.Value}
}
