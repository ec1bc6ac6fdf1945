package dashboard

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	auditmodel "github.com/complyhub/compliance-management-api/internal/audit/model"
	compliancemodel "github.com/complyhub/compliance-management-api/internal/compliance/model"
	"github.com/complyhub/compliance-management-api/internal/dashboard/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/permission"
	"github.com/complyhub/compliance-management-api/internal/system/cache"
	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/log"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
	usermodel "github.com/complyhub/compliance-management-api/internal/user/model"
)

const summaryCachePrefix = "dashboard:summary:"

// Settings holds dashboard configuration.
type Settings struct {
	CacheTTL time.Duration
}

// AuditReader lists the audits of a scope.
type AuditReader interface {
	List(ctx context.Context, scope auditmodel.Scope) ([]auditmodel.Audit, error)
}

// FrameworkReader lists compliance frameworks.
type FrameworkReader interface {
	List(ctx context.Context, status lifecycle.Status) ([]compliancemodel.Compliance, error)
}

// ProfileReader lists the profiles of a tenant, or all when tenantID is empty.
type ProfileReader interface {
	List(ctx context.Context, tenantID string) ([]usermodel.Profile, error)
}

// DashboardService defines the exported service interface
type DashboardService interface {
	Summary(ctx context.Context) (*model.Summary, *serviceerror.ServiceError)
	Trends(ctx context.Context) ([]model.TrendCell, *serviceerror.ServiceError)
	Auditors(ctx context.Context) ([]model.AuditorPerformance, *serviceerror.ServiceError)
	RiskTimeline(ctx context.Context) ([]model.RiskPoint, *serviceerror.ServiceError)
	Workload(ctx context.Context) ([]model.Workload, *serviceerror.ServiceError)
	Health(ctx context.Context) (*model.Health, *serviceerror.ServiceError)
	Radar(ctx context.Context, userID string) (*model.Radar, *serviceerror.ServiceError)
}

type dashboardService struct {
	audits     AuditReader
	frameworks FrameworkReader
	users      ProfileReader
	cache      cache.Cache
	gate       permission.Gate
	settings   Settings
	now        utils.Clock
	logger     *log.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// dataset is the tenant scoped input of every view.
type dataset struct {
	audits     []auditmodel.Audit
	frameworks []model.Framework
	auditors   []model.Auditor
}

// NewDashboardService creates a new dashboard service. A nil rng is seeded from the clock.
func NewDashboardService(audits AuditReader, frameworks FrameworkReader, users ProfileReader,
	objCache cache.Cache, gate permission.Gate, settings Settings, now utils.Clock, rng *rand.Rand) DashboardService {
	if now == nil {
		now = utils.SystemClock
	}
	if objCache == nil {
		objCache = cache.NoopCache{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec
	}
	return &dashboardService{
		audits:     audits,
		frameworks: frameworks,
		users:      users,
		cache:      objCache,
		gate:       gate,
		settings:   settings,
		now:        now,
		rng:        rng,
		logger:     log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DashboardService")),
	}
}

func (s *dashboardService) Summary(ctx context.Context) (*model.Summary, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx, permission.ReviewerRoles...)
	if svcErr != nil {
		return nil, svcErr
	}

	key := summaryCachePrefix + scopeKey(caller)
	var cached model.Summary
	found, err := s.cache.GetObject(ctx, key, &cached)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Failed to read cached summary", log.String("key", key), log.Error(err))
	}
	if found {
		return &cached, nil
	}

	data, svcErr := s.load(ctx, caller)
	if svcErr != nil {
		return nil, svcErr
	}
	summary := ComplianceSummary(data.audits, data.frameworks, s.now())

	if s.settings.CacheTTL > 0 {
		if err := s.cache.SetObject(ctx, key, summary, s.settings.CacheTTL); err != nil {
			s.logger.WithContext(ctx).Warn("Failed to cache summary", log.String("key", key), log.Error(err))
		}
	}
	return &summary, nil
}

func (s *dashboardService) Trends(ctx context.Context) ([]model.TrendCell, *serviceerror.ServiceError) {
	data, svcErr := s.authorizedLoad(ctx)
	if svcErr != nil {
		return nil, svcErr
	}
	return ComplianceTrends(data.audits, s.now()), nil
}

func (s *dashboardService) Auditors(ctx context.Context) ([]model.AuditorPerformance, *serviceerror.ServiceError) {
	data, svcErr := s.authorizedLoad(ctx)
	if svcErr != nil {
		return nil, svcErr
	}
	return AuditorPerformance(data.auditors, data.audits, s.now()), nil
}

func (s *dashboardService) RiskTimeline(ctx context.Context) ([]model.RiskPoint, *serviceerror.ServiceError) {
	data, svcErr := s.authorizedLoad(ctx)
	if svcErr != nil {
		return nil, svcErr
	}
	return RiskTimeline(data.audits, s.now()), nil
}

func (s *dashboardService) Workload(ctx context.Context) ([]model.Workload, *serviceerror.ServiceError) {
	data, svcErr := s.authorizedLoad(ctx)
	if svcErr != nil {
		return nil, svcErr
	}
	return Workload(data.auditors, data.audits, s.now()), nil
}

func (s *dashboardService) Health(ctx context.Context) (*model.Health, *serviceerror.ServiceError) {
	data, svcErr := s.authorizedLoad(ctx)
	if svcErr != nil {
		return nil, svcErr
	}
	health := ComplianceHealth(data.audits, data.frameworks)
	return &health, nil
}

// Radar returns the performance radar of one auditor visible to the caller.
func (s *dashboardService) Radar(ctx context.Context, userID string) (*model.Radar, *serviceerror.ServiceError) {
	data, svcErr := s.authorizedLoad(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	for _, auditor := range data.auditors {
		if auditor.UserID != userID {
			continue
		}
		s.rngMu.Lock()
		radar := PerformanceRadar(auditor, data.audits, s.now(), s.rng)
		s.rngMu.Unlock()
		return &radar, nil
	}
	return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Auditor not found")
}

func (s *dashboardService) authorizedLoad(ctx context.Context) (*dataset, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx, permission.ReviewerRoles...)
	if svcErr != nil {
		return nil, svcErr
	}
	return s.load(ctx, caller)
}

// load reads audits, frameworks and profiles concurrently. Non-admins only see
// their own tenant; a non-admin without a tenant sees nothing.
func (s *dashboardService) load(ctx context.Context, caller *permission.Caller) (*dataset, *serviceerror.ServiceError) {
	data := &dataset{}
	if !caller.IsAdmin() && caller.TenantID == "" {
		return data, nil
	}
	tenantID := ""
	if !caller.IsAdmin() {
		tenantID = caller.TenantID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		audits, err := s.audits.List(gctx, auditmodel.Scope{TenantID: tenantID})
		if err != nil {
			return fmt.Errorf("failed to list audits: %w", err)
		}
		data.audits = audits
		return nil
	})
	g.Go(func() error {
		frameworks, err := s.frameworks.List(gctx, "")
		if err != nil {
			return fmt.Errorf("failed to list compliance frameworks: %w", err)
		}
		data.frameworks = make([]model.Framework, 0, len(frameworks))
		for _, f := range frameworks {
			if f.Status == lifecycle.StatusDraft {
				continue
			}
			data.frameworks = append(data.frameworks, model.Framework{ID: f.ID, Name: f.Name})
		}
		return nil
	})
	g.Go(func() error {
		profiles, err := s.users.List(gctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		data.auditors = make([]model.Auditor, 0, len(profiles))
		for _, p := range profiles {
			if p.Revoked || (p.Role != permission.RoleUser && p.Role != permission.RoleExternalAuditor) {
				continue
			}
			data.auditors = append(data.auditors, model.Auditor{UserID: p.UserID, Email: p.Email})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, err.Error())
	}
	return data, nil
}

func scopeKey(caller *permission.Caller) string {
	if caller.IsAdmin() {
		return "all"
	}
	if caller.TenantID == "" {
		return "none"
	}
	return "tenant:" + caller.TenantID
}
