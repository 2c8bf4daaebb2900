package handlers

import (
	"log"
	"net/http"

	request "marcenaria_mdf/internal/adapter/http/dto/request"
	response "marcenaria_mdf/internal/adapter/http/dto/response"
	"marcenaria_mdf/internal/usecase"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	usecase usecase.ICustomerUseCase
}

func NewCustomerHandler(uc usecase.ICustomerUseCase) *CustomerHandler {
	return &CustomerHandler{usecase: uc}
}

// CreateCustomer godoc
// @Summary  Register a customer
// @Tags     customers
// @Accept   json
// @Produce  json
// @Param    customer body request.CustomerRequest true "Customer"
// @Success  201 {object} response.CustomerResponse
// @Failure  400 {object} pkg.HTTPError
// @Security Bearer
// @Router   /customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var payload request.CustomerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("[customer][handler] create invalid payload err=%v", err)
		respondInvalidPayload(c)
		return
	}

	created, err := h.usecase.Create(c.Request.Context(), payload.ToInput())
	if err != nil {
		respondError(c, "customer", err)
		return
	}
	c.JSON(http.StatusCreated, response.FromCustomer(created))
}

// ListCustomers godoc
// @Summary  List customers
// @Tags     customers
// @Produce  json
// @Success  200 {array} response.CustomerResponse
// @Security Bearer
// @Router   /customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	list, err := h.usecase.List(c.Request.Context())
	if err != nil {
		respondError(c, "customer", err)
		return
	}
	c.JSON(http.StatusOK, response.FromCustomers(list))
}

// GetCustomer godoc
// @Summary  Get a customer
// @Tags     customers
// @Produce  json
// @Param    id path string true "Customer ID"
// @Success  200 {object} response.CustomerResponse
// @Failure  404 {object} pkg.HTTPError
// @Security Bearer
// @Router   /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.usecase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "customer", err)
		return
	}
	c.JSON(http.StatusOK, response.FromCustomer(customer))
}

// UpdateCustomer godoc
// @Summary  Patch a customer
// @Tags     customers
// @Accept   json
// @Produce  json
// @Param    id       path string                       true "Customer ID"
// @Param    customer body request.CustomerPatchRequest true "Fields to change"
// @Success  200 {object} response.CustomerResponse
// @Security Bearer
// @Router   /customers/{id} [patch]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var payload request.CustomerPatchRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondInvalidPayload(c)
		return
	}

	updated, err := h.usecase.Update(c.Request.Context(), c.Param("id"), payload.ToPatch())
	if err != nil {
		respondError(c, "customer", err)
		return
	}
	c.JSON(http.StatusOK, response.FromCustomer(updated))
}

// DeleteCustomer godoc
// @Summary  Delete a customer; budgets keep their reference
// @Tags     customers
// @Param    id path string true "Customer ID"
// @Success  204
// @Failure  404 {object} pkg.HTTPError
// @Security Bearer
// @Router   /customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "customer", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LookupAddress godoc
// @Summary  Resolve a CEP into an address
// @Tags     customers
// @Produce  json
// @Param    cep path string true "CEP"
// @Success  200 {object} response.AddressResponse
// @Failure  404 {object} pkg.HTTPError
// @Security Bearer
// @Router   /addresses/{cep} [get]
func (h *CustomerHandler) LookupAddress(c *gin.Context) {
	addr, err := h.usecase.LookupAddress(c.Request.Context(), c.Param("cep"))
	if err != nil {
		respondError(c, "address", err)
		return
	}
	if addr.Empty() {
		c.JSON(http.StatusNotFound, errAddressNotFound.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromAddress(addr))
}
