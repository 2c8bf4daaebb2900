package usecase

import (
	"context"
	"log"

	"marcenaria_mdf/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// ReportSummary backs the dashboard counters.
type ReportSummary struct {
	TotalCustomers int                           `json:"total_customers"`
	TotalBudgets   int                           `json:"total_budgets"`
	ByStatus       map[entities.BudgetStatus]int `json:"by_status"`
	Pending        int                           `json:"pending"`
	Revenue        decimal.Decimal               `json:"revenue"`
	PaidRevenue    decimal.Decimal               `json:"paid_revenue"`
	AverageTicket  decimal.Decimal               `json:"average_ticket"`
	Stale          bool                          `json:"stale"`
}

type IReportUseCase interface {
	Summary(ctx context.Context) (ReportSummary, error)
}

type ReportUseCase struct {
	budgets   IBudgetUseCase
	customers ICustomerUseCase
}

var _ IReportUseCase = (*ReportUseCase)(nil)

func NewReportUseCase(budgets IBudgetUseCase, customers ICustomerUseCase) *ReportUseCase {
	return &ReportUseCase{budgets: budgets, customers: customers}
}

// Summary counts every budget. Pending means neither approved nor paid;
// Revenue sums final amounts of all budgets, PaidRevenue only of paid ones.
//
// When the budget store cannot be listed but the manager cache is warm, the
// summary is computed from the cache and flagged Stale.
func (u *ReportUseCase) Summary(ctx context.Context) (ReportSummary, error) {
	stale := false
	budgets, err := u.budgets.List(ctx)
	if err != nil {
		if budgets = u.budgets.Snapshot(); len(budgets) == 0 {
			return ReportSummary{}, err
		}
		log.Printf("[report][usecase] list failed, summarizing cached budgets count=%d err=%v", len(budgets), err)
		stale = true
	}
	customers, err := u.customers.List(ctx)
	if err != nil {
		return ReportSummary{}, err
	}

	s := ReportSummary{
		TotalCustomers: len(customers),
		TotalBudgets:   len(budgets),
		ByStatus:       make(map[entities.BudgetStatus]int, len(entities.AllBudgetStatuses())),
		Revenue:        decimal.Zero,
		PaidRevenue:    decimal.Zero,
		AverageTicket:  decimal.Zero,
		Stale:          stale,
	}
	for _, st := range entities.AllBudgetStatuses() {
		s.ByStatus[st] = 0
	}
	for _, b := range budgets {
		s.ByStatus[b.Status]++
		if b.Status != entities.BudgetStatusApproved && b.Status != entities.BudgetStatusPaid {
			s.Pending++
		}
		s.Revenue = s.Revenue.Add(b.FinalAmount)
		if b.Status == entities.BudgetStatusPaid {
			s.PaidRevenue = s.PaidRevenue.Add(b.FinalAmount)
		}
	}
	if len(budgets) > 0 {
		s.AverageTicket = s.Revenue.Div(decimal.NewFromInt(int64(len(budgets)))).Round(2)
	}
	return s, nil
}
