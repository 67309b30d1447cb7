package handler

import (
	"net/http"

	"anoa.com/hostelhub/internal/modules/suggestion/dto"
	suggestion "anoa.com/hostelhub/internal/modules/suggestion/service"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SuggestionHandler struct {
	service suggestion.SuggestionService
}

func NewSuggestionHandler(service suggestion.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{service: service}
}

// target reads the caller and the :id parameter shared by the item routes.
func target(c *gin.Context) (policy.Identity, uuid.UUID, bool) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return id, uuid.Nil, false
	}

	suggestionID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return id, uuid.Nil, false
	}

	return id, suggestionID, true
}

func (h *SuggestionHandler) GetAll(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter dto.SuggestionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	suggestions, err := h.service.GetAll(c.Request.Context(), id, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, suggestions)
}

func (h *SuggestionHandler) GetOpen(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	suggestions, err := h.service.GetOpen(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, suggestions)
}

func (h *SuggestionHandler) Count(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	count, err := h.service.CountOpen(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}

func (h *SuggestionHandler) GetByID(c *gin.Context) {
	id, suggestionID, ok := target(c)
	if !ok {
		return
	}

	result, err := h.service.GetByID(c.Request.Context(), id, suggestionID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SuggestionHandler) Create(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateSuggestionRequest
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

func (h *SuggestionHandler) AddComment(c *gin.Context) {
	id, suggestionID, ok := target(c)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.AddComment(c.Request.Context(), id, suggestionID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *SuggestionHandler) Respond(c *gin.Context) {
	id, suggestionID, ok := target(c)
	if !ok {
		return
	}

	var req dto.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.Respond(c.Request.Context(), id, suggestionID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SuggestionHandler) UpdateStatus(c *gin.Context) {
	id, suggestionID, ok := target(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), id, suggestionID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SuggestionHandler) Delete(c *gin.Context) {
	id, suggestionID, ok := target(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, suggestionID); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "suggestion deleted successfully")
}
