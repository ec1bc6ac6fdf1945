package checklist

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/checklist/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

// multipartOverhead is the room left for form fields around the uploaded file.
const multipartOverhead = 1 << 20

type checklistHandler struct {
	service        ChecklistService
	maxUploadBytes int64
}

func newChecklistHandler(service ChecklistService, maxUploadBytes int64) *checklistHandler {
	return &checklistHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// createChecklist handles POST /checklists
func (h *checklistHandler) createChecklist(c *gin.Context) {
	var req model.CreateRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	checklist, svcErr := h.service.CreateChecklist(c.Request.Context(), req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, checklist)
}

func (h *checklistHandler) listChecklists(c *gin.Context) {
	checklists, svcErr := h.service.ListChecklists(c.Request.Context(), c.Query("compliance_id"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, checklists)
}

func (h *checklistHandler) getChecklist(c *gin.Context) {
	checklist, svcErr := h.service.GetChecklist(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, checklist)
}

// getForEdit handles GET /checklists/:id/edit
func (h *checklistHandler) getForEdit(c *gin.Context) {
	view, svcErr := h.service.GetForEdit(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, view)
}

func (h *checklistHandler) updateSchema(c *gin.Context) {
	var req model.UpdateSchemaRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	checklist, svcErr := h.service.UpdateSchema(c.Request.Context(), c.Param("id"), req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, checklist)
}

func (h *checklistHandler) changeStatus(action lifecycle.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		checklist, svcErr := h.service.ChangeStatus(c.Request.Context(), c.Param("id"), action)
		if svcErr != nil {
			utils.SendError(c, svcErr)
			return
		}
		utils.SendSuccess(c, http.StatusOK, checklist)
	}
}

func (h *checklistHandler) deleteChecklist(c *gin.Context) {
	if svcErr := h.service.DeleteChecklist(c.Request.Context(), c.Param("id")); svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, nil)
}

// uploadDocument handles POST /checklists/:id/documents (multipart: item_id, file)
func (h *checklistHandler) uploadDocument(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "file is required: "+err.Error()))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "failed to read uploaded file"))
		return
	}
	defer file.Close()

	doc, svcErr := h.service.UploadDocument(c.Request.Context(), c.Param("id"), Upload{
		ItemID:      c.PostForm("item_id"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, doc)
}

func (h *checklistHandler) submitResponse(c *gin.Context) {
	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	response, svcErr := h.service.SubmitResponse(c.Request.Context(), c.Param("id"), req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, response)
}

func (h *checklistHandler) listResponses(c *gin.Context) {
	responses, svcErr := h.service.ListResponses(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, responses)
}
