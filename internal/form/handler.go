package form

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/form/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

type formHandler struct {
	service FormService
}

func newFormHandler(service FormService) *formHandler {
	return &formHandler{service: service}
}

// createForm handles POST /forms
func (h *formHandler) createForm(c *gin.Context) {
	var req model.CreateRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	form, svcErr := h.service.CreateForm(c.Request.Context(), req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, form)
}

// listForms handles GET /forms?compliance_id=
func (h *formHandler) listForms(c *gin.Context) {
	forms, svcErr := h.service.ListForms(c.Request.Context(), c.Query("compliance_id"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, forms)
}

func (h *formHandler) getForm(c *gin.Context) {
	form, svcErr := h.service.GetForm(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, form)
}

// updateSchema handles PUT /forms/:id/schema
func (h *formHandler) updateSchema(c *gin.Context) {
	var req model.UpdateSchemaRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	form, svcErr := h.service.UpdateSchema(c.Request.Context(), c.Param("id"), req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, form)
}

func (h *formHandler) changeStatus(action lifecycle.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, svcErr := h.service.ChangeStatus(c.Request.Context(), c.Param("id"), action)
		if svcErr != nil {
			utils.SendError(c, svcErr)
			return
		}
		utils.SendSuccess(c, http.StatusOK, form)
	}
}

func (h *formHandler) deleteForm(c *gin.Context) {
	if svcErr := h.service.DeleteForm(c.Request.Context(), c.Param("id")); svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, nil)
}

// submitResponse handles POST /forms/:id/responses
func (h *formHandler) submitResponse(c *gin.Context) {
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

func (h *formHandler) listResponses(c *gin.Context) {
	responses, svcErr := h.service.ListResponses(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, responses)
}
