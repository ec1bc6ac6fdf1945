// Package form manages form documents and their submissions.
package form

import (
	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/audit"
	"github.com/complyhub/compliance-management-api/internal/compliance"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/permission"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/metrics"
)

// Initialize sets up the form module and registers routes
func Initialize(
	router *gin.RouterGroup,
	store FormStore,
	frameworks compliance.ComplianceStore,
	audits audit.AuditStore,
	tx dbmodel.Transactioner,
	gate permission.Gate,
	settings Settings,
	recorder *metrics.Recorder,
) FormService {
	service := NewFormService(store, frameworks, audits, tx, gate, settings, recorder, nil)
	handler := newFormHandler(service)

	registerRoutes(router, handler)

	return service
}

func registerRoutes(router *gin.RouterGroup, handler *formHandler) {
	group := router.Group("/forms")

	group.POST("", handler.createForm)
	group.GET("", handler.listForms)
	group.GET("/:id", handler.getForm)
	group.PUT("/:id/schema", handler.updateSchema)
	group.DELETE("/:id", handler.deleteForm)

	group.POST("/:id/activate", handler.changeStatus(lifecycle.ActionActivate))
	group.POST("/:id/archive", handler.changeStatus(lifecycle.ActionArchive))
	group.POST("/:id/reactivate", handler.changeStatus(lifecycle.ActionReactivate))

	group.POST("/:id/responses", handler.submitResponse)
	group.GET("/:id/responses", handler.listResponses)
}
