package handler

import (
	"net/http"

	"anoa.com/hostelhub/internal/modules/attendance/dto"
	attendance "anoa.com/hostelhub/internal/modules/attendance/service"
	"anoa.com/hostelhub/internal/policy"
	commonDto "anoa.com/hostelhub/pkg/dto"
	"anoa.com/hostelhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	service attendance.AttendanceService
}

func NewAttendanceHandler(service attendance.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

func (h *AttendanceHandler) GetAll(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter dto.AttendanceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	records, err := h.service.GetAll(c.Request.Context(), id, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *AttendanceHandler) GetStudentRecords(c *gin.Context) {
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

	var month commonDto.MonthFilter
	if err := c.ShouldBindQuery(&month); err != nil {
		response.BindError(c, err)
		return
	}

	records, err := h.service.GetStudentRecords(c.Request.Context(), id, studentID, month)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *AttendanceHandler) GetMine(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var month commonDto.MonthFilter
	if err := c.ShouldBindQuery(&month); err != nil {
		response.BindError(c, err)
		return
	}

	records, err := h.service.GetMine(c.Request.Context(), id, month)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// Mark answers 201 when a new record was inserted and 200 when an existing one was updated.
func (h *AttendanceHandler) Mark(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	record, created, err := h.service.Mark(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, record)
}

func (h *AttendanceHandler) BulkMark(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.BulkMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.BulkMark(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *AttendanceHandler) Stats(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var month commonDto.MonthFilter
	if err := c.ShouldBindQuery(&month); err != nil {
		response.BindError(c, err)
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), id, month)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
