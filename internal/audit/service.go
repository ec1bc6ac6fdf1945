package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/complyhub/compliance-management-api/internal/audit/model"
	"github.com/complyhub/compliance-management-api/internal/permission"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/log"
	"github.com/complyhub/compliance-management-api/internal/system/metrics"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

// AuditService defines the exported service interface
type AuditService interface {
	ListAudits(ctx context.Context, filter model.Filter) ([]model.Audit, *serviceerror.ServiceError)
	GetAudit(ctx context.Context, id string) (*model.Audit, *serviceerror.ServiceError)
	VerifyAudit(ctx context.Context, id string, req model.VerifyRequest) (*model.Audit, *serviceerror.ServiceError)
	ExportAudits(ctx context.Context, filter model.Filter, format string) (*Export, *serviceerror.ServiceError)
}

type auditService struct {
	store   AuditStore
	tx      dbmodel.Transactioner
	gate    permission.Gate
	metrics *metrics.Recorder
	now     utils.Clock
	logger  *log.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(store AuditStore, tx dbmodel.Transactioner, gate permission.Gate, recorder *metrics.Recorder, now utils.Clock) AuditService {
	if now == nil {
		now = utils.SystemClock
	}
	return &auditService{
		store:   store,
		tx:      tx,
		gate:    gate,
		metrics: recorder,
		now:     now,
		logger:  log.GetLogger().With(log.String(log.LoggerKeyComponentName, "AuditService")),
	}
}

// ListAudits returns the audit history visible to the caller.
func (s *auditService) ListAudits(ctx context.Context, filter model.Filter) ([]model.Audit, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx)
	if svcErr != nil {
		return nil, svcErr
	}
	return s.history(ctx, caller, filter)
}

func (s *auditService) GetAudit(ctx context.Context, id string) (*model.Audit, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	audit, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !canSee(caller, audit) {
		return nil, notFound()
	}
	return audit, nil
}

// VerifyAudit records a manager or admin decision on a completed audit. An
// audit is verified at most once.
func (s *auditService) VerifyAudit(ctx context.Context, id string, req model.VerifyRequest) (*model.Audit, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx, permission.RoleAdmin, permission.RoleManager)
	if svcErr != nil {
		return nil, svcErr
	}

	req.Decision = strings.ToLower(strings.TrimSpace(req.Decision))
	if err := utils.ValidateStruct(req); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}

	audit, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !caller.IsAdmin() && (audit.TenantID == nil || !caller.CanSeeTenant(*audit.TenantID)) {
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, serviceerror.ForbiddenError.ErrorDescription)
	}
	if audit.Status != model.StatusCompleted {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Only completed audits can be verified")
	}
	if audit.VerifiedAt != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ConflictError, "Audit has already been verified")
	}

	status := model.VerificationAccepted
	if req.Decision == "reject" {
		status = model.VerificationRejected
	}
	now := s.now()
	verifier := caller.UserID
	audit.VerificationStatus = &status
	audit.VerifiedBy = &verifier
	audit.VerifiedAt = &now
	audit.UpdatedAt = now
	if action := strings.TrimSpace(req.CorrectiveAction); action != "" && status == model.VerificationRejected {
		audit.CorrectiveAction = &action
	}

	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.UpdateVerification(tx, audit)
		},
	})
	if errors.Is(err, ErrAlreadyVerified) {
		return nil, serviceerror.CustomServiceError(serviceerror.ConflictError, "Audit has already been verified")
	}
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to verify audit: %v", err))
	}

	s.metrics.Verification(req.Decision)
	s.logger.WithContext(ctx).Info("Audit verified",
		log.String("audit_id", id), log.String("decision", status), log.String("verified_by", verifier))
	return audit, nil
}

// ExportAudits renders the filtered history as csv, html or xlsx.
func (s *auditService) ExportAudits(ctx context.Context, filter model.Filter, format string) (*Export, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx, permission.ReviewerRoles...)
	if svcErr != nil {
		return nil, svcErr
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatHTML && format != FormatXLSX {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, fmt.Sprintf("Unsupported export format: %s", format))
	}

	audits, svcErr := s.history(ctx, caller, filter)
	if svcErr != nil {
		return nil, svcErr
	}

	export, err := render(audits, format, s.now())
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, fmt.Sprintf("failed to render audit export: %v", err))
	}

	s.logger.WithContext(ctx).Info("Audit export generated",
		log.String("format", format), log.Int("rows", len(audits)), log.String("user_id", caller.UserID))
	return export, nil
}

func (s *auditService) history(ctx context.Context, caller *permission.Caller, filter model.Filter) ([]model.Audit, *serviceerror.ServiceError) {
	scope, ok := scopeFor(caller)
	if !ok {
		return []model.Audit{}, nil
	}

	audits, err := s.store.List(ctx, scope)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to list audits: %v", err))
	}

	filtered, err := applyFilter(audits, filter)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, err.Error())
	}
	return filtered, nil
}

func (s *auditService) load(ctx context.Context, id string) (*model.Audit, *serviceerror.ServiceError) {
	audit, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to retrieve audit: %v", err))
	}
	if audit == nil {
		return nil, notFound()
	}
	return audit, nil
}

// scopeFor maps a caller to the audits it may read. Reviewers without a
// tenant see nothing.
func scopeFor(caller *permission.Caller) (model.Scope, bool) {
	switch {
	case caller.IsAdmin():
		return model.Scope{}, true
	case caller.HasRole(permission.RoleManager, permission.RoleExternalAuditor):
		if caller.TenantID == "" {
			return model.Scope{}, false
		}
		return model.Scope{TenantID: caller.TenantID}, true
	default:
		return model.Scope{UserID: caller.UserID}, true
	}
}

func canSee(caller *permission.Caller, audit *model.Audit) bool {
	switch {
	case caller.IsAdmin():
		return true
	case caller.HasRole(permission.RoleManager, permission.RoleExternalAuditor):
		return audit.TenantID != nil && caller.CanSeeTenant(*audit.TenantID)
	default:
		return audit.UserID == caller.UserID
	}
}

func notFound() *serviceerror.ServiceError {
	return serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Audit not found")
}
