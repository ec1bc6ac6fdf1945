package compliance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/complyhub/compliance-management-api/internal/compliance/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/permission"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/log"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

const maxNameLength = 255

// ComplianceService defines the exported service interface
type ComplianceService interface {
	CreateFramework(ctx context.Context, req model.CreateRequest) (*model.Compliance, *serviceerror.ServiceError)
	GetFramework(ctx context.Context, id string) (*model.Compliance, *serviceerror.ServiceError)
	ListFrameworks(ctx context.Context, status string) ([]model.Compliance, *serviceerror.ServiceError)
	UpdateFramework(ctx context.Context, id string, req model.UpdateRequest) (*model.Compliance, *serviceerror.ServiceError)
	ChangeStatus(ctx context.Context, id string, action lifecycle.Action) (*model.Compliance, *serviceerror.ServiceError)
	DeleteFramework(ctx context.Context, id string) *serviceerror.ServiceError
}

type complianceService struct {
	store  ComplianceStore
	tx     dbmodel.Transactioner
	gate   permission.Gate
	now    utils.Clock
	logger *log.Logger
}

// NewComplianceService creates a new compliance framework service
func NewComplianceService(store ComplianceStore, tx dbmodel.Transactioner, gate permission.Gate, now utils.Clock) ComplianceService {
	if now == nil {
		now = utils.SystemClock
	}
	return &complianceService{
		store:  store,
		tx:     tx,
		gate:   gate,
		now:    now,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ComplianceService")),
	}
}

func (s *complianceService) CreateFramework(ctx context.Context, req model.CreateRequest) (*model.Compliance, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx, permission.RoleAdmin)
	if svcErr != nil {
		return nil, svcErr
	}

	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	if err := s.ensureNameAvailable(ctx, name, ""); err != nil {
		return nil, err
	}

	now := s.now()
	framework := &model.Compliance{
		ID:        utils.GenerateUUID(),
		Name:      name,
		Status:    lifecycle.StatusDraft,
		CreatedBy: caller.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		framework.Description = &desc
	}

	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.Create(tx, framework)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to create compliance framework: %v", err))
	}

	s.logger.WithContext(ctx).Info("Compliance framework created",
		log.String("compliance_id", framework.ID), log.String("created_by", caller.UserID))
	return framework, nil
}

// GetFramework returns one framework. Non-admins only see active frameworks.
func (s *complianceService) GetFramework(ctx context.Context, id string) (*model.Compliance, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	framework, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !caller.IsAdmin() && framework.Status != lifecycle.StatusActive {
		return nil, notFound()
	}
	return framework, nil
}

// ListFrameworks lists frameworks. Admins may filter by status; everyone else
// always gets the active ones.
func (s *complianceService) ListFrameworks(ctx context.Context, status string) ([]model.Compliance, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	filter := lifecycle.Status(status)
	if !caller.IsAdmin() {
		filter = lifecycle.StatusActive
	} else if filter != "" && !filter.IsValid() {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, fmt.Sprintf("Invalid status: %s", status))
	}

	frameworks, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to list compliance frameworks: %v", err))
	}
	return frameworks, nil
}

// UpdateFramework renames or re-describes a framework that has no responses yet.
func (s *complianceService) UpdateFramework(ctx context.Context, id string, req model.UpdateRequest) (*model.Compliance, *serviceerror.ServiceError) {
	if _, svcErr := s.gate.Require(ctx, permission.RoleAdmin); svcErr != nil {
		return nil, svcErr
	}

	framework, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := s.ensureUnused(ctx, id, "modify"); svcErr != nil {
		return nil, svcErr
	}

	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if name != framework.Name {
		if err := s.ensureNameAvailable(ctx, name, id); err != nil {
			return nil, err
		}
	}

	framework.Name = name
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if desc == "" {
			framework.Description = nil
		} else {
			framework.Description = &desc
		}
	}
	framework.UpdatedAt = s.now()

	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.Update(tx, framework)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to update compliance framework: %v", err))
	}
	return framework, nil
}

// ChangeStatus applies a lifecycle action. Allowed even when the framework has responses.
func (s *complianceService) ChangeStatus(ctx context.Context, id string, action lifecycle.Action) (*model.Compliance, *serviceerror.ServiceError) {
	if _, svcErr := s.gate.Require(ctx, permission.RoleAdmin); svcErr != nil {
		return nil, svcErr
	}

	framework, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	next, err := lifecycle.Apply(framework.Status, action)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, transitionMessage(err))
	}

	framework.Status = next
	framework.UpdatedAt = s.now()
	err = s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.UpdateStatus(tx, id, next, framework.UpdatedAt)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to update compliance framework status: %v", err))
	}
	return framework, nil
}

func (s *complianceService) DeleteFramework(ctx context.Context, id string) *serviceerror.ServiceError {
	if _, svcErr := s.gate.Require(ctx, permission.RoleAdmin); svcErr != nil {
		return svcErr
	}
	if _, svcErr := s.load(ctx, id); svcErr != nil {
		return svcErr
	}
	if svcErr := s.ensureUnused(ctx, id, "delete"); svcErr != nil {
		return svcErr
	}

	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.Delete(tx, id)
		},
	})
	if err != nil {
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to delete compliance framework: %v", err))
	}

	s.logger.WithContext(ctx).Info("Compliance framework deleted", log.String("compliance_id", id))
	return nil
}

func (s *complianceService) load(ctx context.Context, id string) (*model.Compliance, *serviceerror.ServiceError) {
	framework, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to retrieve compliance framework: %v", err))
	}
	if framework == nil {
		return nil, notFound()
	}
	return framework, nil
}

func (s *complianceService) ensureNameAvailable(ctx context.Context, name, selfID string) *serviceerror.ServiceError {
	existing, err := s.store.GetByName(ctx, name)
	if err != nil {
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to check name existence: %v", err))
	}
	if existing != nil && existing.ID != selfID {
		return serviceerror.CustomServiceError(serviceerror.ConflictError, "A compliance framework with this name already exists")
	}
	return nil
}

func (s *complianceService) ensureUnused(ctx context.Context, id, verb string) *serviceerror.ServiceError {
	used, err := s.store.HasResponses(ctx, id)
	if err != nil {
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to check framework responses: %v", err))
	}
	if used {
		return serviceerror.CustomServiceError(serviceerror.ConflictError,
			fmt.Sprintf("Cannot %s a compliance framework that already has responses", verb))
	}
	return nil
}

func validateName(name string) *serviceerror.ServiceError {
	if name == "" {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, "Name is required")
	}
	if len(name) > maxNameLength {
		return serviceerror.CustomServiceError(serviceerror.ValidationError, "Name must be at most 255 characters")
	}
	return nil
}

func notFound() *serviceerror.ServiceError {
	return serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Compliance framework not found")
}

func transitionMessage(err error) string {
	var te *lifecycle.TransitionError
	if errors.As(err, &te) {
		return fmt.Sprintf("Cannot %s a compliance framework in %s status", te.Action, te.From)
	}
	return err.Error()
}
