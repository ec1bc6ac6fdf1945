package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditmodel "github.com/complyhub/compliance-management-api/internal/audit/model"
	"github.com/complyhub/compliance-management-api/internal/dashboard/model"
	"github.com/complyhub/compliance-management-api/internal/system/middleware"
	"github.com/complyhub/compliance-management-api/internal/testutil"
)

func setupRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.IdentityMiddleware("X-User-ID"))
	Initialize(router.Group("/api/v1"), f.audits, f.frameworks, f.profiles, f.cache, testutil.Gate(), Settings{})
	return router
}

func get(router *gin.Engine, path, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Summary(t *testing.T) {
	f := newFixture()
	f.expectTenant("tenant-a", []auditmodel.Audit{newAudit("a1", withResult("pass"), withScore(75))})
	router := setupRouter(f)

	w := get(router, "/api/v1/dashboard/summary", testutil.Manager.UserID)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool          `json:"success"`
		Data    model.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp.Data.ComplianceRate)
	assert.Equal(t, 0, f.cache.sets)
}

func TestHandler_RequiresIdentity(t *testing.T) {
	router := setupRouter(newFixture())

	w := get(router, "/api/v1/dashboard/trends", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_RadarUnknownAuditor(t *testing.T) {
	f := newFixture()
	f.expectTenant("", nil)
	router := setupRouter(f)

	w := get(router, "/api/v1/dashboard/radar/nobody", testutil.Admin.UserID)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
