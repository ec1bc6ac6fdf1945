package compliance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/compliance/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

type complianceHandler struct {
	service ComplianceService
}

func newComplianceHandler(service ComplianceService) *complianceHandler {
	return &complianceHandler{service: service}
}

// createFramework handles POST /compliance
func (h *complianceHandler) createFramework(c *gin.Context) {
	var req model.CreateRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	framework, svcErr := h.service.CreateFramework(c.Request.Context(), req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, framework)
}

// listFrameworks handles GET /compliance
func (h *complianceHandler) listFrameworks(c *gin.Context) {
	frameworks, svcErr := h.service.ListFrameworks(c.Request.Context(), c.Query("status"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, frameworks)
}

// getFramework handles GET /compliance/:id
func (h *complianceHandler) getFramework(c *gin.Context) {
	framework, svcErr := h.service.GetFramework(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, framework)
}

// updateFramework handles PUT /compliance/:id
func (h *complianceHandler) updateFramework(c *gin.Context) {
	var req model.UpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	framework, svcErr := h.service.UpdateFramework(c.Request.Context(), c.Param("id"), req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, framework)
}

// changeStatus handles POST /compliance/:id/{activate,archive,reactivate}
func (h *complianceHandler) changeStatus(action lifecycle.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		framework, svcErr := h.service.ChangeStatus(c.Request.Context(), c.Param("id"), action)
		if svcErr != nil {
			utils.SendError(c, svcErr)
			return
		}
		utils.SendSuccess(c, http.StatusOK, framework)
	}
}

// deleteFramework handles DELETE /compliance/:id
func (h *complianceHandler) deleteFramework(c *gin.Context) {
	if svcErr := h.service.DeleteFramework(c.Request.Context(), c.Param("id")); svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, nil)
}
