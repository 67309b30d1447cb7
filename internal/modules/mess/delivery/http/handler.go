package handler

import (
	"net/http"

	"anoa.com/hostelhub/internal/modules/mess/dto"
	mess "anoa.com/hostelhub/internal/modules/mess/service"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type MessHandler struct {
	service mess.MessService
}

func NewMessHandler(service mess.MessService) *MessHandler {
	return &MessHandler{service: service}
}

func (h *MessHandler) GetMenu(c *gin.Context) {
	menu, err := h.service.GetMenu(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, menu)
}

func (h *MessHandler) UpdateDay(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	menu, err := h.service.UpdateDay(c.Request.Context(), id, c.Param("day"), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, menu)
}

func (h *MessHandler) UpdateMenu(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var items []dto.MenuItemRequest
	if err := c.ShouldBindJSON(&items); err != nil {
		response.BindError(c, err)
		return
	}

	menu, err := h.service.UpdateMenu(c.Request.Context(), id, items)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, menu)
}

func (h *MessHandler) CreateFeedback(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	feedback, err := h.service.CreateFeedback(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, feedback)
}

func (h *MessHandler) GetFeedback(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	feedback, err := h.service.GetFeedback(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func (h *MessHandler) GetMyFeedback(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	feedback, err := h.service.GetMyFeedback(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}
