package audit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/complyhub/compliance-management-api/internal/audit/model"
	"github.com/complyhub/compliance-management-api/internal/system/middleware"
	"github.com/complyhub/compliance-management-api/internal/testutil"
)

func setupRouter(store AuditStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.IdentityMiddleware("X-User-ID"))
	Initialize(router.Group("/api/v1"), store, &testutil.Transactioner{}, testutil.Gate(), nil)
	return router
}

func TestHandler_Export(t *testing.T) {
	store := &MockAuditStore{}
	store.On("List", mock.Anything, model.Scope{}).Return([]model.Audit{{ID: "a-1", Status: "completed"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audits/export?format=csv&status=completed", nil)
	req.Header.Set("X-User-ID", testutil.Admin.UserID)
	w := httptest.NewRecorder()
	setupRouter(store).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="audits-`)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Audit ID,Form,Framework"))
}

func TestHandler_Verify(t *testing.T) {
	store := &MockAuditStore{}
	store.On("GetByID", mock.Anything, "a-1").Return(completedAudit("tenant-a"), nil)
	store.On("UpdateVerification", mock.Anything, mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/audits/a-1/verify", strings.NewReader(`{"decision":"accept"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", testutil.Manager.UserID)
	w := httptest.NewRecorder()
	setupRouter(store).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"verification_status":"accepted"`)
}

func TestHandler_ListFiltersByQuery(t *testing.T) {
	store := &MockAuditStore{}
	store.On("List", mock.Anything, model.Scope{UserID: testutil.User.UserID}).Return([]model.Audit{
		{ID: "a-1", Status: "completed"},
		{ID: "a-2", Status: "draft"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audits?status=draft", nil)
	req.Header.Set("X-User-ID", testutil.User.UserID)
	w := httptest.NewRecorder()
	setupRouter(store).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"a-2"`)
	assert.NotContains(t, w.Body.String(), `"id":"a-1"`)
}
