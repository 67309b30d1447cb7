package handler

import (
	"net/http"
	"strings"

	"anoa.com/hostelhub/internal/modules/complaint/dto"
	complaint "anoa.com/hostelhub/internal/modules/complaint/service"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/response"
	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

type ComplaintHandler struct {
	service complaint.ComplaintService
}

func NewComplaintHandler(service complaint.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: service}
}

// GetAll serves the admin list, the warden block list and the student's own
// complaints. Which rows come back is decided by the caller's scope.
func (h *ComplaintHandler) GetAll(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter dto.ComplaintFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	complaints, err := h.service.GetAll(c.Request.Context(), id, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, complaints)
}

func (h *ComplaintHandler) Search(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	complaints, err := h.service.Search(c.Request.Context(), id, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, complaints)
}

func (h *ComplaintHandler) GetByID(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	complaintID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.GetByID(c.Request.Context(), id, complaintID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ComplaintHandler) Create(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateComplaintRequest
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

func (h *ComplaintHandler) AttachImage(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	complaintID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		response.Message(c, http.StatusBadRequest, "image is required")
		return
	}
	if file.Size > maxImageSize {
		response.Message(c, http.StatusBadRequest, "image must be at most 5MB")
		return
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		response.Message(c, http.StatusBadRequest, "only image uploads are allowed")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer f.Close()

	result, err := h.service.AttachImage(c.Request.Context(), id, complaintID, f, file.Filename)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	complaintID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), id, complaintID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ComplaintHandler) Resolve(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	complaintID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.Resolve(c.Request.Context(), id, complaintID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ComplaintHandler) Delete(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	complaintID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, complaintID); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "complaint deleted successfully")
}
