package handler

import (
	"net/http"

	"anoa.com/hostelhub/internal/modules/warden/dto"
	warden "anoa.com/hostelhub/internal/modules/warden/service"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type WardenHandler struct {
	service warden.WardenService
}

func NewWardenHandler(service warden.WardenService) *WardenHandler {
	return &WardenHandler{service: service}
}

func (h *WardenHandler) GetAll(c *gin.Context) {
	wardens, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, wardens)
}

func (h *WardenHandler) GetByID(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	wardenID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profile, err := h.service.GetByID(c.Request.Context(), id, wardenID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *WardenHandler) Create(c *gin.Context) {
	var req dto.CreateWardenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	profile, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

func (h *WardenHandler) Update(c *gin.Context) {
	wardenID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateWardenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	profile, err := h.service.Update(c.Request.Context(), wardenID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *WardenHandler) Delete(c *gin.Context) {
	wardenID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), wardenID); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "warden deleted successfully")
}
