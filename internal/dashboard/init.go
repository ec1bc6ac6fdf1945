// Package dashboard aggregates audits into the dashboard views.
package dashboard

import (
	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/permission"
	"github.com/complyhub/compliance-management-api/internal/system/cache"
)

// Initialize sets up the dashboard module and registers routes
func Initialize(router *gin.RouterGroup, audits AuditReader, frameworks FrameworkReader,
	users ProfileReader, objCache cache.Cache, gate permission.Gate, settings Settings) DashboardService {
	service := NewDashboardService(audits, frameworks, users, objCache, gate, settings, nil, nil)
	handler := newDashboardHandler(service)

	registerRoutes(router, handler)

	return service
}

func registerRoutes(router *gin.RouterGroup, handler *dashboardHandler) {
	group := router.Group("/dashboard")

	group.GET("/summary", handler.getSummary)
	group.GET("/trends", handler.getTrends)
	group.GET("/auditors", handler.getAuditors)
	group.GET("/risk-timeline", handler.getRiskTimeline)
	group.GET("/workload", handler.getWorkload)
	group.GET("/health", handler.getHealth)
	group.GET("/radar/:userId", handler.getRadar)
}
