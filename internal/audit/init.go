// Package audit serves the audit history, verification and exports.
package audit

import (
	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/permission"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/metrics"
)

// Initialize sets up the audit module and registers routes
func Initialize(router *gin.RouterGroup, store AuditStore, tx dbmodel.Transactioner, gate permission.Gate, recorder *metrics.Recorder) AuditService {
	service := NewAuditService(store, tx, gate, recorder, nil)
	handler := newAuditHandler(service)

	registerRoutes(router, handler)

	return service
}

func registerRoutes(router *gin.RouterGroup, handler *auditHandler) {
	group := router.Group("/audits")

	group.GET("", handler.listAudits)
	group.GET("/export", handler.exportAudits)
	group.GET("/:id", handler.getAudit)
	group.POST("/:id/verify", handler.verifyAudit)
}
