package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyhub/compliance-management-api/internal/system/constants"
	"github.com/complyhub/compliance-management-api/internal/system/log"
	"github.com/complyhub/compliance-management-api/internal/system/metrics"
	"github.com/complyhub/compliance-management-api/internal/system/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCorrelationIDMiddleware_PropagatesHeader(t *testing.T) {
	r := gin.New()
	r.Use(CorrelationIDMiddleware())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = log.CorrelationID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rec.Header().Get(constants.HeaderCorrelationID))
}

func TestCorrelationIDMiddleware_Generates(t *testing.T) {
	r := gin.New()
	r.Use(CorrelationIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Len(t, rec.Header().Get(constants.HeaderCorrelationID), 36)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(CORSOptions{
		AllowedOrigins: []string{"https://app.example.com"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.OPTIONS("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSMiddleware_UnknownOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(CORSOptions{AllowedOrigins: []string{"https://app.example.com"}}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestIdentityMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(IdentityMiddleware("X-User-ID"))
	var fromCtx string
	r.GET("/me", func(c *gin.Context) {
		fromCtx = security.UserIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-User-ID", " u-1 ")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "u-1", fromCtx)
}

func TestRecoveryMiddleware_MasksPanic(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware())
	r.GET("/boom", func(c *gin.Context) { panic("secret detail") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "An unexpected error occurred")
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	recorder := metrics.NewRecorder()
	r := gin.New()
	r.Use(MetricsMiddleware(recorder))
	r.GET("/audits/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/audits/a-1", nil))

	families, err := recorder.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() != "compliance_mgt_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == "/audits/:id" {
					found = true
				}
			}
		}
	}
	assert.True(t, found)
}
