package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/complyhub/compliance-management-api/internal/audit"
	auditmodel "github.com/complyhub/compliance-management-api/internal/audit/model"
	"github.com/complyhub/compliance-management-api/internal/compliance"
	"github.com/complyhub/compliance-management-api/internal/form/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/permission"
	"github.com/complyhub/compliance-management-api/internal/schema"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/log"
	"github.com/complyhub/compliance-management-api/internal/system/metrics"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

// Settings tune how form schemas are validated and submissions scored.
type Settings struct {
	PassThreshold    float64
	StrictValidation bool
}

// FormService defines the exported service interface
type FormService interface {
	CreateForm(ctx context.Context, req model.CreateRequest) (*model.Form, *serviceerror.ServiceError)
	GetForm(ctx context.Context, id string) (*model.Form, *serviceerror.ServiceError)
	ListForms(ctx context.Context, complianceID string) ([]model.Form, *serviceerror.ServiceError)
	UpdateSchema(ctx context.Context, id string, req model.UpdateSchemaRequest) (*model.Form, *serviceerror.ServiceError)
	ChangeStatus(ctx context.Context, id string, action lifecycle.Action) (*model.Form, *serviceerror.ServiceError)
	DeleteForm(ctx context.Context, id string) *serviceerror.ServiceError
	SubmitResponse(ctx context.Context, id string, req model.SubmitRequest) (*model.FormResponse, *serviceerror.ServiceError)
	ListResponses(ctx context.Context, id string) ([]model.FormResponse, *serviceerror.ServiceError)
}

type formService struct {
	store      FormStore
	frameworks compliance.ComplianceStore
	audits     audit.AuditStore
	tx         dbmodel.Transactioner
	gate       permission.Gate
	settings   Settings
	metrics    *metrics.Recorder
	now        utils.Clock
	logger     *log.Logger
}

// NewFormService creates a new form service
func NewFormService(
	store FormStore,
	frameworks compliance.ComplianceStore,
	audits audit.AuditStore,
	tx dbmodel.Transactioner,
	gate permission.Gate,
	settings Settings,
	recorder *metrics.Recorder,
	now utils.Clock,
) FormService {
	if now == nil {
		now = utils.SystemClock
	}
	return &formService{
		store:      store,
		frameworks: frameworks,
		audits:     audits,
		tx:         tx,
		gate:       gate,
		settings:   settings,
		metrics:    recorder,
		now:        now,
		logger:     log.GetLogger().With(log.String(log.LoggerKeyComponentName, "FormService")),
	}
}

func (s *formService) CreateForm(ctx context.Context, req model.CreateRequest) (*model.Form, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx, permission.RoleAdmin)
	if svcErr != nil {
		return nil, svcErr
	}

	if strings.TrimSpace(req.ComplianceID) == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "compliance_id is required")
	}
	framework, err := s.frameworks.GetByID(ctx, req.ComplianceID)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to retrieve compliance framework: %v", err))
	}
	if framework == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Compliance framework not found")
	}

	status := lifecycle.Status(req.Status)
	if status == "" {
		status = lifecycle.StatusDraft
	}
	if status != lifecycle.StatusDraft && status != lifecycle.StatusActive {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, fmt.Sprintf("Invalid status: %s", req.Status))
	}

	parsed, svcErr := s.checkSchema(req.FormSchema)
	if svcErr != nil {
		return nil, svcErr
	}

	now := s.now()
	form := &model.Form{
		ID:           utils.GenerateUUID(),
		ComplianceID: framework.ID,
		Title:        parsed.Title,
		FormSchema:   []byte(req.FormSchema),
		Status:       status,
		CreatedBy:    caller.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.Create(tx, form)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to create form: %v", err))
	}

	s.logger.WithContext(ctx).Info("Form created",
		log.String("form_id", form.ID), log.String("compliance_id", form.ComplianceID))
	return form, nil
}

// GetForm returns one form. Non-admins only see active forms.
func (s *formService) GetForm(ctx context.Context, id string) (*model.Form, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	form, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !caller.IsAdmin() && form.Status != lifecycle.StatusActive {
		return nil, notFound()
	}
	return form, nil
}

func (s *formService) ListForms(ctx context.Context, complianceID string) ([]model.Form, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	forms, err := s.store.List(ctx, complianceID)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to list forms: %v", err))
	}
	if caller.IsAdmin() {
		return forms, nil
	}

	active := make([]model.Form, 0, len(forms))
	for _, f := range forms {
		if f.Status == lifecycle.StatusActive {
			active = append(active, f)
		}
	}
	return active, nil
}

func (s *formService) UpdateSchema(ctx context.Context, id string, req model.UpdateSchemaRequest) (*model.Form, *serviceerror.ServiceError) {
	if _, svcErr := s.gate.Require(ctx, permission.RoleAdmin); svcErr != nil {
		return nil, svcErr
	}

	form, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := s.ensureFrameworkUnused(ctx, form.ComplianceID, "modify"); svcErr != nil {
		return nil, svcErr
	}

	parsed, svcErr := s.checkSchema(req.FormSchema)
	if svcErr != nil {
		return nil, svcErr
	}

	form.FormSchema = []byte(req.FormSchema)
	form.Title = parsed.Title
	form.UpdatedAt = s.now()

	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.UpdateSchema(tx, id, form.FormSchema, form.UpdatedAt)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to update form schema: %v", err))
	}
	return form, nil
}

func (s *formService) ChangeStatus(ctx context.Context, id string, action lifecycle.Action) (*model.Form, *serviceerror.ServiceError) {
	if _, svcErr := s.gate.Require(ctx, permission.RoleAdmin); svcErr != nil {
		return nil, svcErr
	}

	form, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	next, err := lifecycle.Apply(form.Status, action)
	if err != nil {
		var te *lifecycle.TransitionError
		if errors.As(err, &te) {
			return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
				fmt.Sprintf("Cannot %s a form in %s status", te.Action, te.From))
		}
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, err.Error())
	}

	form.Status = next
	form.UpdatedAt = s.now()
	err = s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.UpdateStatus(tx, id, next, form.UpdatedAt)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to update form status: %v", err))
	}
	return form, nil
}

func (s *formService) DeleteForm(ctx context.Context, id string) *serviceerror.ServiceError {
	if _, svcErr := s.gate.Require(ctx, permission.RoleAdmin); svcErr != nil {
		return svcErr
	}

	form, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return svcErr
	}
	if svcErr := s.ensureFrameworkUnused(ctx, form.ComplianceID, "delete"); svcErr != nil {
		return svcErr
	}

	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.Delete(tx, id)
		},
	})
	if err != nil {
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to delete form: %v", err))
	}

	s.logger.WithContext(ctx).Info("Form deleted", log.String("form_id", id))
	return nil
}

// SubmitResponse stores a submission and its audit record atomically. Drafts
// skip required-field checks and scoring.
func (s *formService) SubmitResponse(ctx context.Context, id string, req model.SubmitRequest) (*model.FormResponse, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	form, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if form.Status != lifecycle.StatusActive {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Form is not active")
	}

	formSchema, err := schema.ParseForm(form.FormSchema)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, fmt.Sprintf("stored schema of form %s is invalid: %v", id, err))
	}

	answers := req.Answers
	if answers == nil {
		answers = schema.Answers{}
	}

	now := s.now()
	response := &model.FormResponse{
		ID:        utils.GenerateUUID(),
		FormID:    form.ID,
		UserID:    caller.UserID,
		TenantID:  optional(caller.TenantID),
		Answers:   answers,
		Status:    auditmodel.StatusDraft,
		Comments:  optional(strings.TrimSpace(req.Comments)),
		CreatedAt: now,
	}
	record := &auditmodel.Audit{
		ID:             utils.GenerateUUID(),
		FormID:         form.ID,
		FormResponseID: response.ID,
		ComplianceID:   form.ComplianceID,
		UserID:         caller.UserID,
		TenantID:       response.TenantID,
		Status:         auditmodel.StatusDraft,
		Comments:       response.Comments,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if !req.Draft {
		if errs := schema.CheckRequired(*formSchema, answers); len(errs) > 0 {
			return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, errs.Error())
		}
		score := schema.ScoreForm(*formSchema, answers, s.settings.PassThreshold)
		response.Status = auditmodel.StatusCompleted
		response.Score = &score

		record.Status = auditmodel.StatusCompleted
		record.Marks = &score.Marks
		record.MaxMarks = &score.MaxMarks
		record.Percentage = &score.Percentage
		if score.Result != schema.ResultNone {
			record.Result = optional(string(score.Result))
		}
		record.VerificationStatus = optional(auditmodel.VerificationPending)
	}
	response.AuditID = record.ID

	err = s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.CreateResponse(tx, response)
		},
		func(tx dbmodel.TxInterface) error {
			return s.audits.Create(tx, record)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to store form response: %v", err))
	}

	s.metrics.Submission("form", submissionOutcome(response))
	s.logger.WithContext(ctx).Info("Form response submitted",
		log.String("form_id", form.ID), log.String("audit_id", record.ID), log.String("status", response.Status))
	return response, nil
}

// ListResponses returns the submissions of a form visible to the caller.
func (s *formService) ListResponses(ctx context.Context, id string) ([]model.FormResponse, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx, permission.ReviewerRoles...)
	if svcErr != nil {
		return nil, svcErr
	}
	if _, svcErr := s.load(ctx, id); svcErr != nil {
		return nil, svcErr
	}

	responses, err := s.store.ListResponses(ctx, id)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to list form responses: %v", err))
	}
	if caller.IsAdmin() {
		return responses, nil
	}

	visible := make([]model.FormResponse, 0, len(responses))
	for _, r := range responses {
		if r.TenantID != nil && caller.CanSeeTenant(*r.TenantID) {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

func (s *formService) load(ctx context.Context, id string) (*model.Form, *serviceerror.ServiceError) {
	form, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to retrieve form: %v", err))
	}
	if form == nil {
		return nil, notFound()
	}
	return form, nil
}

func (s *formService) checkSchema(raw string) (*schema.FormSchema, *serviceerror.ServiceError) {
	if strings.TrimSpace(raw) == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "form_schema is required")
	}
	parsed, err := schema.ParseForm([]byte(raw))
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	if s.settings.StrictValidation {
		if errs := schema.ValidateForm(*parsed); len(errs) > 0 {
			return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, errs.Error())
		}
	}
	return parsed, nil
}

func (s *formService) ensureFrameworkUnused(ctx context.Context, complianceID, verb string) *serviceerror.ServiceError {
	used, err := s.frameworks.HasResponses(ctx, complianceID)
	if err != nil {
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to check framework responses: %v", err))
	}
	if used {
		return serviceerror.CustomServiceError(serviceerror.ConflictError,
			fmt.Sprintf("Cannot %s a form whose compliance framework already has responses", verb))
	}
	return nil
}

func notFound() *serviceerror.ServiceError {
	return serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Form not found")
}

func submissionOutcome(r *model.FormResponse) string {
	switch {
	case r.Status == auditmodel.StatusDraft:
		return "draft"
	case r.Score == nil || r.Score.Result == schema.ResultNone:
		return "unscored"
	default:
		return string(r.Score.Result)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
