package handler

import (
	"net/http"

	"anoa.com/hostelhub/internal/modules/invoice/dto"
	invoice "anoa.com/hostelhub/internal/modules/invoice/service"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	service invoice.InvoiceService
}

func NewInvoiceHandler(service invoice.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

func (h *InvoiceHandler) GetAll(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter dto.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	invoices, err := h.service.GetAll(c.Request.Context(), id, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetByStudent(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	studentID, err := response.ParamUUID(c, "studentId")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	invoices, err := h.service.GetByStudent(c.Request.Context(), id, studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetMine(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	invoices, err := h.service.GetMine(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	invoiceID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.GetByID(c.Request.Context(), id, invoiceID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	invoiceID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), id, invoiceID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *InvoiceHandler) Pay(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	invoiceID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.Pay(c.Request.Context(), id, invoiceID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
