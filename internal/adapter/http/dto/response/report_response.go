package response

import (
	"marcenaria_mdf/internal/domain/money"
	"marcenaria_mdf/internal/usecase"
)

type ReportSummaryResponse struct {
	TotalCustomers int            `json:"total_customers"`
	TotalBudgets   int            `json:"total_budgets"`
	ByStatus       map[string]int `json:"by_status"`
	Pending        int            `json:"pending"`
	Revenue        string         `json:"revenue"`
	PaidRevenue    string         `json:"paid_revenue"`
	AverageTicket  string         `json:"average_ticket"`
	Stale          bool           `json:"stale"`
}

// FromReportSummary renders amounts with two decimal places.
func FromReportSummary(s usecase.ReportSummary) ReportSummaryResponse {
	byStatus := make(map[string]int, len(s.ByStatus))
	for k, v := range s.ByStatus {
		byStatus[string(k)] = v
	}
	return ReportSummaryResponse{
		TotalCustomers: s.TotalCustomers,
		TotalBudgets:   s.TotalBudgets,
		ByStatus:       byStatus,
		Pending:        s.Pending,
		Revenue:        money.Format2(s.Revenue),
		PaidRevenue:    money.Format2(s.PaidRevenue),
		AverageTicket:  money.Format2(s.AverageTicket),
		Stale:          s.Stale,
	}
}

type PublishResponse struct {
	Rows int `json:"rows"`
}
