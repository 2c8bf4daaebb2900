package handlers

import (
	"log"
	"net/http"

	request "marcenaria_mdf/internal/adapter/http/dto/request"
	response "marcenaria_mdf/internal/adapter/http/dto/response"
	"marcenaria_mdf/internal/usecase"

	"github.com/gin-gonic/gin"
)

// BudgetHandler exposes the budget lifecycle manager.
type BudgetHandler struct {
	usecase usecase.IBudgetUseCase
	export  usecase.IExportUseCase
}

func NewBudgetHandler(uc usecase.IBudgetUseCase, export usecase.IExportUseCase) *BudgetHandler {
	return &BudgetHandler{usecase: uc, export: export}
}

// CreateBudget godoc
// @Summary  Create a budget
// @Tags     budgets
// @Accept   json
// @Produce  json
// @Param    budget body request.CreateBudgetRequest true "Budget"
// @Success  201 {object} response.BudgetResponse
// @Failure  400 {object} pkg.HTTPError
// @Security Bearer
// @Router   /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var payload request.CreateBudgetRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("[budget][handler] create invalid payload err=%v", err)
		respondInvalidPayload(c)
		return
	}

	res, err := h.usecase.Create(c.Request.Context(), payload.ToInput())
	if err != nil {
		respondError(c, "budget", err)
		return
	}
	c.JSON(http.StatusCreated, response.FromBudgetResult(res))
}

// ListBudgets godoc
// @Summary  List budgets, newest first
// @Tags     budgets
// @Produce  json
// @Success  200 {array} response.BudgetResponse
// @Security Bearer
// @Router   /budgets [get]
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	list, err := h.usecase.List(c.Request.Context())
	if err != nil {
		respondError(c, "budget", err)
		return
	}
	c.JSON(http.StatusOK, response.FromBudgets(list))
}

// GetBudget godoc
// @Summary  Get a budget
// @Tags     budgets
// @Produce  json
// @Param    id path string true "Budget ID"
// @Success  200 {object} response.BudgetResponse
// @Failure  404 {object} pkg.HTTPError
// @Security Bearer
// @Router   /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	b, err := h.usecase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "budget", err)
		return
	}
	c.JSON(http.StatusOK, response.FromBudget(b))
}

// UpdateBudget godoc
// @Summary  Patch a budget
// @Tags     budgets
// @Accept   json
// @Produce  json
// @Param    id     path string                      true "Budget ID"
// @Param    budget body request.UpdateBudgetRequest true "Fields to change"
// @Success  200 {object} response.BudgetResponse
// @Failure  409 {object} pkg.HTTPError
// @Security Bearer
// @Router   /budgets/{id} [patch]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	var payload request.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("[budget][handler] update invalid payload id=%s err=%v", c.Param("id"), err)
		respondInvalidPayload(c)
		return
	}

	res, err := h.usecase.Update(c.Request.Context(), c.Param("id"), payload.ToPatch())
	if err != nil {
		respondError(c, "budget", err)
		return
	}
	c.JSON(http.StatusOK, response.FromBudgetResult(res))
}

// UpdateBudgetStatus godoc
// @Summary  Move a budget through its lifecycle
// @Tags     budgets
// @Accept   json
// @Produce  json
// @Param    id     path string                            true "Budget ID"
// @Param    status body request.UpdateBudgetStatusRequest true "Target status"
// @Success  200 {object} response.BudgetResponse
// @Failure  409 {object} pkg.HTTPError
// @Security Bearer
// @Router   /budgets/{id}/status [patch]
func (h *BudgetHandler) UpdateBudgetStatus(c *gin.Context) {
	var payload request.UpdateBudgetStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondInvalidPayload(c)
		return
	}

	res, err := h.usecase.TransitionStatus(c.Request.Context(), c.Param("id"), request.ParseStatus(payload.Status))
	if err != nil {
		respondError(c, "budget", err)
		return
	}
	log.Printf("[budget][handler] status changed id=%s status=%s", res.Budget.ID, res.Budget.Status)
	c.JSON(http.StatusOK, response.FromBudgetResult(res))
}

// DeleteBudget godoc
// @Summary  Delete a budget
// @Tags     budgets
// @Param    id path string true "Budget ID"
// @Success  204
// @Failure  404 {object} pkg.HTTPError
// @Security Bearer
// @Router   /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "budget", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ShareBudget godoc
// @Summary  Build the WhatsApp share link for a budget
// @Tags     budgets
// @Produce  json
// @Param    id path string true "Budget ID"
// @Success  200 {object} response.ShareLinkResponse
// @Security Bearer
// @Router   /budgets/{id}/whatsapp [get]
func (h *BudgetHandler) ShareBudget(c *gin.Context) {
	c.JSON(http.StatusOK, response.FromLinkResult(h.usecase.ShareLink(c.Request.Context(), c.Param("id"))))
}

// DownloadBudgetDocument godoc
// @Summary  Download the budget as a plain-text document
// @Tags     budgets
// @Produce  plain
// @Param    id path string true "Budget ID"
// @Success  200 {string} string
// @Security Bearer
// @Router   /budgets/{id}/document [get]
func (h *BudgetHandler) DownloadBudgetDocument(c *gin.Context) {
	body, filename, err := h.export.BudgetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "budget", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}
