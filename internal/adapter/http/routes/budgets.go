package routes

import (
	"marcenaria_mdf/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathBudgets   = "/budgets"
	PathCustomers = "/customers"
	PathAddresses = "/addresses"
	PathPayments  = "/payments"
	PathReports   = "/reports"
	PathExport    = "/export"
)

func addBudgetRoutes(rg *gin.RouterGroup, h *handlers.BudgetHandler) {
	budgets := rg.Group(PathBudgets)
	{
		budgets.POST("", h.CreateBudget)
		budgets.GET("", h.ListBudgets)
		budgets.GET("/:id", h.GetBudget)
		budgets.PATCH("/:id", h.UpdateBudget)
		budgets.DELETE("/:id", h.DeleteBudget)
		budgets.PATCH("/:id/status", h.UpdateBudgetStatus)
		budgets.GET("/:id/whatsapp", h.ShareBudget)
		budgets.GET("/:id/document", h.DownloadBudgetDocument)
	}
}

func addCustomerRoutes(rg *gin.RouterGroup, h *handlers.CustomerHandler) {
	customers := rg.Group(PathCustomers)
	{
		customers.POST("", h.CreateCustomer)
		customers.GET("", h.ListCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.PATCH("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)
	}

	rg.GET(PathAddresses+"/:cep", h.LookupAddress)
}

func addPaymentRoutes(rg *gin.RouterGroup, h *handlers.BillingPaymentHandler) {
	payments := rg.Group(PathPayments)
	{
		payments.POST("/:budget_id", h.CreatePaymentByBudgetID)
		payments.GET("/:budget_id", h.GetPaymentByBudgetID)
		payments.GET("/:budget_id/history", h.ListPaymentsByBudgetID)
	}
}

func addReportRoutes(rg *gin.RouterGroup, h *handlers.ReportHandler) {
	rg.GET(PathReports+"/summary", h.Summary)

	export := rg.Group(PathExport)
	{
		export.GET("/budgets", h.ExportBudgets)
		export.GET("/customers", h.ExportCustomers)
		export.POST("/budgets/sheets", h.PublishBudgets)
	}
}
