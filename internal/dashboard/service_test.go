package dashboard

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditmodel "github.com/complyhub/compliance-management-api/internal/audit/model"
	compliancemodel "github.com/complyhub/compliance-management-api/internal/compliance/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/permission"
	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/testutil"
	usermodel "github.com/complyhub/compliance-management-api/internal/user/model"
)

type fixture struct {
	service    DashboardService
	audits     *MockAuditReader
	frameworks *MockFrameworkReader
	profiles   *MockProfileReader
	cache      *memoryCache
}

func newFixture() *fixture {
	f := &fixture{
		audits:     &MockAuditReader{},
		frameworks: &MockFrameworkReader{},
		profiles:   &MockProfileReader{},
		cache:      newMemoryCache(),
	}
	f.service = NewDashboardService(f.audits, f.frameworks, f.profiles, f.cache, testutil.Gate(),
		Settings{CacheTTL: time.Minute}, func() time.Time { return fixedNow }, rand.New(rand.NewSource(1)))
	return f
}

func (f *fixture) expectTenant(tenantID string, audits []auditmodel.Audit) {
	f.audits.On("List", mock.Anything, auditmodel.Scope{TenantID: tenantID}).Return(audits, nil)
	f.frameworks.On("List", mock.Anything, lifecycle.Status("")).Return([]compliancemodel.Compliance{
		{ID: "c-1", Name: "ISO", Status: lifecycle.StatusActive},
		{ID: "c-draft", Name: "Draft", Status: lifecycle.StatusDraft},
	}, nil)
	f.profiles.On("List", mock.Anything, tenantID).Return([]usermodel.Profile{
		{UserID: "user-1", Email: "user@example.com", Role: permission.RoleUser},
		{UserID: "auditor-1", Email: "auditor@example.com", Role: permission.RoleExternalAuditor},
		{UserID: "manager-1", Role: permission.RoleManager},
		{UserID: "gone", Role: permission.RoleUser, Revoked: true},
	}, nil)
}

func TestSummary_TenantScopeAndCache(t *testing.T) {
	f := newFixture()
	f.expectTenant("tenant-a", []auditmodel.Audit{
		newAudit("a1", withScore(90), withResult("pass")),
		newAudit("a2", withScore(40), withResult("failed")),
		newAudit("a3", withScore(70), withResult("pass")),
	})
	ctx := testutil.As(testutil.Manager)

	summary, svcErr := f.service.Summary(ctx)
	require.Nil(t, svcErr)
	assert.Equal(t, 66.67, summary.ComplianceRate)
	require.Len(t, summary.Frameworks, 1)
	assert.Equal(t, "c-1", summary.Frameworks[0].ComplianceID)

	again, svcErr := f.service.Summary(ctx)
	require.Nil(t, svcErr)
	assert.Equal(t, summary, again)
	assert.Equal(t, 1, f.cache.sets)
	f.audits.AssertNumberOfCalls(t, "List", 1)
}

func TestSummary_AdminSeesAll(t *testing.T) {
	f := newFixture()
	f.expectTenant("", nil)

	_, svcErr := f.service.Summary(testutil.As(testutil.Admin))

	require.Nil(t, svcErr)
	f.audits.AssertCalled(t, "List", mock.Anything, auditmodel.Scope{})
}

func TestSummary_RejectsPlainUser(t *testing.T) {
	f := newFixture()

	_, svcErr := f.service.Summary(testutil.As(testutil.User))

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ForbiddenError.Code, svcErr.Code)
}

func TestAuditors_OnlyActiveAuditors(t *testing.T) {
	f := newFixture()
	f.expectTenant("tenant-a", []auditmodel.Audit{newAudit("a1", withUser("auditor-1"), withResult("pass"))})

	perf, svcErr := f.service.Auditors(testutil.As(testutil.Auditor))

	require.Nil(t, svcErr)
	require.Len(t, perf, 2)
	assert.Equal(t, "user-1", perf[0].UserID)
	assert.Equal(t, "auditor-1", perf[1].UserID)
	assert.Equal(t, 100.0, perf[1].PassRate)
}

func TestLoad_StoreFailure(t *testing.T) {
	f := newFixture()
	f.audits.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
	f.frameworks.On("List", mock.Anything, mock.Anything).Return([]compliancemodel.Compliance{}, nil)
	f.profiles.On("List", mock.Anything, mock.Anything).Return([]usermodel.Profile{}, nil)

	_, svcErr := f.service.Trends(testutil.As(testutil.Admin))

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.DatabaseError.Code, svcErr.Code)
	assert.Contains(t, svcErr.ErrorDescription, "failed to list audits")
}

func TestRadar(t *testing.T) {
	f := newFixture()
	f.expectTenant("tenant-a", []auditmodel.Audit{newAudit("a1", withUser("user-1"), withResult("pass"), withScore(88))})
	ctx := testutil.As(testutil.Manager)

	radar, svcErr := f.service.Radar(ctx, "user-1")
	require.Nil(t, svcErr)
	assert.Equal(t, "user-1", radar.UserID)
	assert.Len(t, radar.Metrics, 7)

	_, svcErr = f.service.Radar(ctx, "manager-1")
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ResourceNotFoundError.Code, svcErr.Code)
}

func TestHealthAndWorkload(t *testing.T) {
	f := newFixture()
	f.expectTenant("tenant-a", []auditmodel.Audit{
		newAudit("a1", withUser("user-1"), withScore(85)),
		newAudit("a2", withUser("user-1"), withStatus(auditmodel.StatusDraft)),
	})
	ctx := testutil.As(testutil.Manager)

	health, svcErr := f.service.Health(ctx)
	require.Nil(t, svcErr)
	assert.Equal(t, 85.0, health.Score)
	assert.Equal(t, "healthy", health.Status)

	workload, svcErr := f.service.Workload(ctx)
	require.Nil(t, svcErr)
	require.Len(t, workload, 2)
	assert.Equal(t, 1, workload[0].Open)

	points, svcErr := f.service.RiskTimeline(ctx)
	require.Nil(t, svcErr)
	require.Len(t, points, 1)
}
