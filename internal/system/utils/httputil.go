/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */


package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/complyhub/compliance-management-api/internal/system/error/apierror"
	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/log"
)

// unexpectedErrorMessage is the only detail server errors expose to callers.
const unexpectedErrorMessage = "An unexpected error occurred"

// SendError writes a ServiceError as an HTTP response with appropriate status code.
// Server errors are logged and replaced by a generic message.
func SendError(c *gin.Context, err *serviceerror.ServiceError) {
	statusCode := StatusCodeFor(err)
	message := err.ErrorDescription

	if err.Type == serviceerror.ServerErrorType {
		log.GetLogger().WithContext(c.Request.Context()).Error("Action failed with server error",
			log.String("code", err.Code),
			log.String("detail", err.ErrorDescription),
			log.String("path", c.FullPath()),
		)
		message = unexpectedErrorMessage
	}

	c.AbortWithStatusJSON(statusCode, apierror.NewErrorResponse(err.Code, message))
}

// StatusCodeFor maps a ServiceError to its HTTP status code.
func StatusCodeFor(err *serviceerror.ServiceError) int {
	if err.Type != serviceerror.ClientErrorType {
		return http.StatusInternalServerError
	}
	switch err.Code {
	case serviceerror.ResourceNotFoundError.Code:
		return http.StatusNotFound
	case serviceerror.ConflictError.Code:
		return http.StatusConflict
	case serviceerror.UnauthorizedError.Code:
		return http.StatusUnauthorized
	case serviceerror.ForbiddenError.Code:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// SendSuccess writes the success envelope.
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, apierror.SuccessResponse{Success: true, Data: data})
}

// SendBindError writes a binding failure as an invalid request.
func SendBindError(c *gin.Context, err error) {
	SendError(c, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "invalid request body: "+err.Error()))
}
