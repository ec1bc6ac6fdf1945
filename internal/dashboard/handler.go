package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

type dashboardHandler struct {
	service DashboardService
}

func newDashboardHandler(service DashboardService) *dashboardHandler {
	return &dashboardHandler{service: service}
}

// getSummary handles GET /dashboard/summary
func (h *dashboardHandler) getSummary(c *gin.Context) {
	summary, svcErr := h.service.Summary(c.Request.Context())
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, summary)
}

// getTrends handles GET /dashboard/trends
func (h *dashboardHandler) getTrends(c *gin.Context) {
	trends, svcErr := h.service.Trends(c.Request.Context())
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, trends)
}

// getAuditors handles GET /dashboard/auditors
func (h *dashboardHandler) getAuditors(c *gin.Context) {
	auditors, svcErr := h.service.Auditors(c.Request.Context())
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, auditors)
}

// getRiskTimeline handles GET /dashboard/risk-timeline
func (h *dashboardHandler) getRiskTimeline(c *gin.Context) {
	points, svcErr := h.service.RiskTimeline(c.Request.Context())
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, points)
}

// getWorkload handles GET /dashboard/workload
func (h *dashboardHandler) getWorkload(c *gin.Context) {
	workload, svcErr := h.service.Workload(c.Request.Context())
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, workload)
}

// getHealth handles GET /dashboard/health
func (h *dashboardHandler) getHealth(c *gin.Context) {
	health, svcErr := h.service.Health(c.Request.Context())
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, health)
}

// getRadar handles GET /dashboard/radar/:userId
func (h *dashboardHandler) getRadar(c *gin.Context) {
	radar, svcErr := h.service.Radar(c.Request.Context(), c.Param("userId"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, radar)
}
