package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
	"github.com/complyhub/compliance-management-api/internal/user/model"
)

type userHandler struct {
	service UserService
}

func newUserHandler(service UserService) *userHandler {
	return &userHandler{service: service}
}

// inviteUser handles POST /users/invite
func (h *userHandler) inviteUser(c *gin.Context) {
	var req model.InviteRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	profile, svcErr := h.service.InviteUser(c.Request.Context(), req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, profile)
}

// listUsers handles GET /users
func (h *userHandler) listUsers(c *gin.Context) {
	profiles, svcErr := h.service.ListUsers(c.Request.Context())
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, profiles)
}

// updateRole handles PUT /users/:userId/role
func (h *userHandler) updateRole(c *gin.Context) {
	var req model.UpdateRoleRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	profile, svcErr := h.service.UpdateRole(c.Request.Context(), c.Param("userId"), req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, profile)
}

// updateTenant handles PUT /users/:userId/tenant
func (h *userHandler) updateTenant(c *gin.Context) {
	var req model.UpdateTenantRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	profile, svcErr := h.service.UpdateTenant(c.Request.Context(), c.Param("userId"), req)
	if svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, profile)
}

// changeAccess handles POST /users/:userId/{revoke,restore}
func (h *userHandler) changeAccess(action func(ctx context.Context, userID string) (*model.Profile, *serviceerror.ServiceError)) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, svcErr := action(c.Request.Context(), c.Param("userId"))
		if svcErr != nil {
			utils.SendError(c, svcErr)
			return
		}
		utils.SendSuccess(c, http.StatusOK, profile)
	}
}

// resendInvite handles POST /users/:userId/resend-invite
func (h *userHandler) resendInvite(c *gin.Context) {
	if svcErr := h.service.ResendInvite(c.Request.Context(), c.Param("userId")); svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, nil)
}

// deleteUser handles DELETE /users/:userId
func (h *userHandler) deleteUser(c *gin.Context) {
	if svcErr := h.service.DeleteUser(c.Request.Context(), c.Param("userId")); svcErr != nil {
		utils.SendError(c, svcErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, nil)
}
