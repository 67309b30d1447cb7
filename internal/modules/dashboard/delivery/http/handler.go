package http

import (
	"net/http"

	"anoa.com/hostelhub/internal/modules/dashboard/service"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

func (h *DashboardHandler) AdminStats(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stats, err := h.dashboardService.Admin(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) WardenStats(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stats, err := h.dashboardService.Warden(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) StudentStats(c *gin.Context) {
	id, err := policy.FromContext(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stats, err := h.dashboardService.Student(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
