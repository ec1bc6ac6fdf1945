// Package checklist manages evidence checklists, their uploads and submissions.
package checklist

import (
	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/compliance"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/permission"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/metrics"
	"github.com/complyhub/compliance-management-api/internal/system/storage"
)

// Initialize sets up the checklist module and registers routes
func Initialize(
	router *gin.RouterGroup,
	store ChecklistStore,
	frameworks compliance.ComplianceStore,
	objects storage.ObjectStorage,
	tx dbmodel.Transactioner,
	gate permission.Gate,
	settings Settings,
	recorder *metrics.Recorder,
) ChecklistService {
	service := NewChecklistService(store, frameworks, objects, tx, gate, settings, recorder, nil)
	handler := newChecklistHandler(service, settings.MaxUploadBytes)

	registerRoutes(router, handler)

	return service
}

func registerRoutes(router *gin.RouterGroup, handler *checklistHandler) {
	group := router.Group("/checklists")

	group.POST("", handler.createChecklist)
	group.GET("", handler.listChecklists)
	group.GET("/:id", handler.getChecklist)
	group.GET("/:id/edit", handler.getForEdit)
	group.PUT("/:id/schema", handler.updateSchema)
	group.DELETE("/:id", handler.deleteChecklist)

	group.POST("/:id/activate", handler.changeStatus(lifecycle.ActionActivate))
	group.POST("/:id/archive", handler.changeStatus(lifecycle.ActionArchive))
	group.POST("/:id/reactivate", handler.changeStatus(lifecycle.ActionReactivate))

	group.POST("/:id/documents", handler.uploadDocument)
	group.POST("/:id/responses", handler.submitResponse)
	group.GET("/:id/responses", handler.listResponses)
}
