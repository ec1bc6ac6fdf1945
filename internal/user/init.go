// Package user manages invited users, their roles and tenants.
package user

import (
	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/permission"
	"github.com/complyhub/compliance-management-api/internal/system/cache"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/mailer"
	"github.com/complyhub/compliance-management-api/internal/system/metrics"
)

// Initialize sets up the user module and registers routes
func Initialize(router *gin.RouterGroup, store UserStore, tx dbmodel.Transactioner, gate permission.Gate,
	mail mailer.Client, locker cache.Locker, recorder *metrics.Recorder) UserService {
	service := NewUserService(store, tx, gate, mail, locker, recorder, nil)
	handler := newUserHandler(service)

	registerRoutes(router, handler)

	return service
}

func registerRoutes(router *gin.RouterGroup, handler *userHandler) {
	group := router.Group("/users")

	group.POST("/invite", handler.inviteUser)
	group.GET("", handler.listUsers)
	group.PUT("/:userId/role", handler.updateRole)
	group.PUT("/:userId/tenant", handler.updateTenant)
	group.POST("/:userId/revoke", handler.changeAccess(handler.service.RevokeUser))
	group.POST("/:userId/restore", handler.changeAccess(handler.service.RestoreUser))
	group.POST("/:userId/resend-invite", handler.resendInvite)
	group.DELETE("/:userId", handler.deleteUser)
}
