package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/audit/model"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

type auditHandler struct {
	service AuditService
}

func newAuditHandler(service AuditService) *auditHandler {
	return &auditHandler{service: service}
}

// listAudits handles GET /audits
func (h *auditHandler) listAudits(c *gin.Context) {
	var filter model.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendBindError(c, err)
		return
	}

	audits, svcErr := h.service.ListAudits(c.Request.Context(), filter)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, audits)
}

func (h *auditHandler) getAudit(c *gin.Context) {
	audit, svcErr := h.service.GetAudit(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, audit)
}

// verifyAudit handles POST /audits/:id/verify
func (h *auditHandler) verifyAudit(c *gin.Context) {
	var req model.VerifyRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	audit, svcErr := h.service.VerifyAudit(c.Request.Context(), c.Param("id"), req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, audit)
}

// exportAudits handles GET /audits/export?format=csv|html|xlsx
func (h *auditHandler) exportAudits(c *gin.Context) {
	var filter model.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendBindError(c, err)
		return
	}

	export, svcErr := h.service.ExportAudits(c.Request.Context(), filter, c.Query("format"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Body)
}
