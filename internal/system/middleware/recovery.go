package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

// RecoveryMiddleware turns a panic into the generic server error envelope.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		utils.SendError(c, serviceerror.CustomServiceError(serviceerror.InternalServerError,
			fmt.Sprintf("panic: %v", recovered)))
	})
}
