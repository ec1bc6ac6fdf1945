// Package compliance manages compliance frameworks.
package compliance

import (
	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/permission"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
)

// Initialize sets up the compliance framework module and registers routes
func Initialize(router *gin.RouterGroup, store ComplianceStore, tx dbmodel.Transactioner, gate permission.Gate) ComplianceService {
	service := NewComplianceService(store, tx, gate, nil)
	handler := newComplianceHandler(service)

	registerRoutes(router, handler)

	return service
}

func registerRoutes(router *gin.RouterGroup, handler *complianceHandler) {
	group := router.Group("/compliance")

	group.POST("", handler.createFramework)
	group.GET("", handler.listFrameworks)
	group.GET("/:id", handler.getFramework)
	group.PUT("/:id", handler.updateFramework)
	group.DELETE("/:id", handler.deleteFramework)

	group.POST("/:id/activate", handler.changeStatus(lifecycle.ActionActivate))
	group.POST("/:id/archive", handler.changeStatus(lifecycle.ActionArchive))
	group.POST("/:id/reactivate", handler.changeStatus(lifecycle.ActionReactivate))
}
