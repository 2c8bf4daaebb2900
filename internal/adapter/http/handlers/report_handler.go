package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	response "marcenaria_mdf/internal/adapter/http/dto/response"
	"marcenaria_mdf/internal/usecase"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the dashboard summary and the tabular exports.
type ReportHandler struct {
	reports usecase.IReportUseCase
	export  usecase.IExportUseCase
	now     func() time.Time
}

func NewReportHandler(reports usecase.IReportUseCase, export usecase.IExportUseCase) *ReportHandler {
	return &ReportHandler{reports: reports, export: export, now: time.Now}
}

// Summary godoc
// @Summary  Dashboard counters
// @Tags     reports
// @Produce  json
// @Success  200 {object} response.ReportSummaryResponse
// @Security Bearer
// @Router   /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	s, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		respondError(c, "report", err)
		return
	}
	c.JSON(http.StatusOK, response.FromReportSummary(s))
}

// ExportBudgets godoc
// @Summary  Budgets as CSV
// @Tags     export
// @Produce  text/csv
// @Success  200 {string} string
// @Security Bearer
// @Router   /export/budgets [get]
func (h *ReportHandler) ExportBudgets(c *gin.Context) {
	body, err := h.export.BudgetsCSV(c.Request.Context())
	if err != nil {
		respondError(c, "export", err)
		return
	}
	h.attachCSV(c, "orcamentos", body)
}

// ExportCustomers godoc
// @Summary  Customers as CSV
// @Tags     export
// @Produce  text/csv
// @Success  200 {string} string
// @Security Bearer
// @Router   /export/customers [get]
func (h *ReportHandler) ExportCustomers(c *gin.Context) {
	body, err := h.export.CustomersCSV(c.Request.Context())
	if err != nil {
		respondError(c, "export", err)
		return
	}
	h.attachCSV(c, "clientes", body)
}

// PublishBudgets godoc
// @Summary  Overwrite the configured Google Sheet with the budget table
// @Tags     export
// @Produce  json
// @Success  200 {object} response.PublishResponse
// @Failure  503 {object} pkg.HTTPError
// @Security Bearer
// @Router   /export/budgets/sheets [post]
func (h *ReportHandler) PublishBudgets(c *gin.Context) {
	rows, err := h.export.PublishBudgets(c.Request.Context())
	if err != nil {
		respondError(c, "export", err)
		return
	}
	log.Printf("[export][handler] sheets publish success rows=%d", rows)
	c.JSON(http.StatusOK, response.PublishResponse{Rows: rows})
}

func (h *ReportHandler) attachCSV(c *gin.Context, prefix string, body []byte) {
	filename := fmt.Sprintf("%s_%s.csv", prefix, h.now().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}
