package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"marcenaria_mdf/internal/adapter/http/dto/request"
	response "marcenaria_mdf/internal/adapter/http/dto/response"
	"marcenaria_mdf/internal/usecase"

	"github.com/gin-gonic/gin"
)

var (
	errUnreadableBody = errors.New("request body is not valid json")
	errEmptyMPPayload = errors.New("mp_payload cannot be empty")
)

// BillingPaymentHandler charges approved budgets and lists their payments.
type BillingPaymentHandler struct {
	usecase  usecase.IBillingPaymentUseCase
	mockMode bool
}

// NewBillingPaymentHandler builds the handler. In mock mode an unreadable
// body becomes an empty charge instead of a 400.
func NewBillingPaymentHandler(uc usecase.IBillingPaymentUseCase, mockMode bool) *BillingPaymentHandler {
	return &BillingPaymentHandler{usecase: uc, mockMode: mockMode}
}

// CreatePaymentByBudgetID godoc
// @Summary  Charge an approved budget through Mercado Pago
// @Description The amount charged is the budget's final amount. On approval the budget moves to paid.
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    budget_id path string                              true  "Budget ID"
// @Param    payment   body request.BillingPaymentCreateRequest false "Mercado Pago payload"
// @Success  200 {object} response.BillingPaymentResponse
// @Failure  400 {object} pkg.HTTPError
// @Failure  409 {object} pkg.HTTPError
// @Failure  503 {object} pkg.HTTPError
// @Security Bearer
// @Router   /payments/{budget_id} [post]
func (h *BillingPaymentHandler) CreatePaymentByBudgetID(c *gin.Context) {
	budgetID := c.Param("budget_id")
	payload, err := readMPPayload(c)
	if err != nil {
		if !h.mockMode {
			log.Printf("[payment][handler] rejected body budget_id=%s err=%v", budgetID, err)
			respondInvalidPayload(c)
			return
		}
		payload = json.RawMessage("{}")
	}

	created, err := h.usecase.CreateAndApprove(c.Request.Context(), budgetID, payload)
	settleErr := errors.Is(err, usecase.ErrBudgetNotSettled)
	if err != nil && !settleErr {
		respondError(c, "payment", err)
		return
	}

	res := response.FromBillingPayment(created)
	if settleErr {
		res = res.WithSettlementWarning(err)
	}
	log.Printf("[payment][handler] charged budget_id=%s payment_id=%s status=%s settled=%t", budgetID, created.ID, created.Status, !settleErr)
	c.JSON(http.StatusOK, res)
}

// GetPaymentByBudgetID godoc
// @Summary  Latest payment registered for a budget
// @Tags     payments
// @Produce  json
// @Param    budget_id path string true "Budget ID"
// @Success  200 {object} response.BillingPaymentResponse
// @Failure  404 {object} pkg.HTTPError
// @Security Bearer
// @Router   /payments/{budget_id} [get]
func (h *BillingPaymentHandler) GetPaymentByBudgetID(c *gin.Context) {
	latest, err := h.usecase.Latest(c.Request.Context(), c.Param("budget_id"))
	if err != nil {
		respondError(c, "payment", err)
		return
	}
	c.JSON(http.StatusOK, response.FromBillingPayment(latest))
}

// ListPaymentsByBudgetID godoc
// @Summary  Every payment registered for a budget, newest first
// @Tags     payments
// @Produce  json
// @Param    budget_id path string true "Budget ID"
// @Success  200 {array} response.BillingPaymentResponse
// @Security Bearer
// @Router   /payments/{budget_id}/history [get]
func (h *BillingPaymentHandler) ListPaymentsByBudgetID(c *gin.Context) {
	list, err := h.usecase.ListByBudgetID(c.Request.Context(), c.Param("budget_id"))
	if err != nil {
		respondError(c, "payment", err)
		return
	}
	c.JSON(http.StatusOK, response.FromBillingPayments(list))
}

// readMPPayload returns the charge body. An empty body is an empty object.
func readMPPayload(c *gin.Context) (json.RawMessage, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, errUnreadableBody
	}
	payload, ok := request.UnwrapChargeBody(raw)
	if !ok {
		return nil, errEmptyMPPayload
	}
	return payload, nil
}
