package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/complyhub/compliance-management-api/internal/checklist/model"
	"github.com/complyhub/compliance-management-api/internal/compliance"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/permission"
	"github.com/complyhub/compliance-management-api/internal/schema"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/log"
	"github.com/complyhub/compliance-management-api/internal/system/metrics"
	"github.com/complyhub/compliance-management-api/internal/system/storage"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
)

const (
	responseStatusCompleted = "completed"
	responseStatusDraft     = "draft"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Settings tune validation, scoring and evidence uploads of checklists.
type Settings struct {
	PassThreshold    float64
	StrictValidation bool
	MaxUploadBytes   int64
}

// Upload is an evidence file received from a client.
type Upload struct {
	ItemID      string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ChecklistService defines the exported service interface
type ChecklistService interface {
	CreateChecklist(ctx context.Context, req model.CreateRequest) (*model.Checklist, *serviceerror.ServiceError)
	GetChecklist(ctx context.Context, id string) (*model.Checklist, *serviceerror.ServiceError)
	GetForEdit(ctx context.Context, id string) (*model.EditView, *serviceerror.ServiceError)
	ListChecklists(ctx context.Context, complianceID string) ([]model.Checklist, *serviceerror.ServiceError)
	UpdateSchema(ctx context.Context, id string, req model.UpdateSchemaRequest) (*model.Checklist, *serviceerror.ServiceError)
	ChangeStatus(ctx context.Context, id string, action lifecycle.Action) (*model.Checklist, *serviceerror.ServiceError)
	DeleteChecklist(ctx context.Context, id string) *serviceerror.ServiceError
	UploadDocument(ctx context.Context, id string, upload Upload) (*model.Document, *serviceerror.ServiceError)
	SubmitResponse(ctx context.Context, id string, req model.SubmitRequest) (*model.ChecklistResponse, *serviceerror.ServiceError)
	ListResponses(ctx context.Context, id string) ([]model.ChecklistResponse, *serviceerror.ServiceError)
}

type checklistService struct {
	store      ChecklistStore
	frameworks compliance.ComplianceStore
	objects    storage.ObjectStorage
	tx         dbmodel.Transactioner
	gate       permission.Gate
	settings   Settings
	metrics    *metrics.Recorder
	now        utils.Clock
	logger     *log.Logger
}

// NewChecklistService creates a new checklist service
func NewChecklistService(
	store ChecklistStore,
	frameworks compliance.ComplianceStore,
	objects storage.ObjectStorage,
	tx dbmodel.Transactioner,
	gate permission.Gate,
	settings Settings,
	recorder *metrics.Recorder,
	now utils.Clock,
) ChecklistService {
	if now == nil {
		now = utils.SystemClock
	}
	return &checklistService{
		store:      store,
		frameworks: frameworks,
		objects:    objects,
		tx:         tx,
		gate:       gate,
		settings:   settings,
		metrics:    recorder,
		now:        now,
		logger:     log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ChecklistService")),
	}
}

func (s *checklistService) CreateChecklist(ctx context.Context, req model.CreateRequest) (*model.Checklist, *serviceerror.ServiceError) {
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

	parsed, normalized, svcErr := s.checkSchema(req.ChecklistSchema)
	if svcErr != nil {
		return nil, svcErr
	}

	now := s.now()
	checklist := &model.Checklist{
		ID:              utils.GenerateUUID(),
		ComplianceID:    framework.ID,
		Title:           parsed.Title,
		ChecklistSchema: normalized,
		Status:          status,
		CreatedBy:       caller.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.Create(tx, checklist)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to create checklist: %v", err))
	}

	s.logger.WithContext(ctx).Info("Checklist created",
		log.String("checklist_id", checklist.ID), log.String("compliance_id", checklist.ComplianceID))
	return checklist, nil
}

func (s *checklistService) GetChecklist(ctx context.Context, id string) (*model.Checklist, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	checklist, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !caller.IsAdmin() && checklist.Status != lifecycle.StatusActive {
		return nil, notFound()
	}
	return checklist, nil
}

// GetForEdit returns the checklist schema in sectioned form for the editor.
func (s *checklistService) GetForEdit(ctx context.Context, id string) (*model.EditView, *serviceerror.ServiceError) {
	if _, svcErr := s.gate.Require(ctx, permission.RoleAdmin); svcErr != nil {
		return nil, svcErr
	}

	checklist, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	parsed, err := schema.ParseChecklist(checklist.ChecklistSchema)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, fmt.Sprintf("stored schema of checklist %s is invalid: %v", id, err))
	}
	return &model.EditView{
		ID:              checklist.ID,
		ComplianceID:    checklist.ComplianceID,
		Status:          checklist.Status,
		Legacy:          schema.IsLegacyChecklist(checklist.ChecklistSchema),
		ChecklistSchema: *parsed,
	}, nil
}

func (s *checklistService) ListChecklists(ctx context.Context, complianceID string) ([]model.Checklist, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	checklists, err := s.store.List(ctx, complianceID)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to list checklists: %v", err))
	}
	if caller.IsAdmin() {
		return checklists, nil
	}

	active := make([]model.Checklist, 0, len(checklists))
	for _, c := range checklists {
		if c.Status == lifecycle.StatusActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *checklistService) UpdateSchema(ctx context.Context, id string, req model.UpdateSchemaRequest) (*model.Checklist, *serviceerror.ServiceError) {
	if _, svcErr := s.gate.Require(ctx, permission.RoleAdmin); svcErr != nil {
		return nil, svcErr
	}

	checklist, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := s.ensureFrameworkUnused(ctx, checklist.ComplianceID, "modify"); svcErr != nil {
		return nil, svcErr
	}

	parsed, normalized, svcErr := s.checkSchema(req.ChecklistSchema)
	if svcErr != nil {
		return nil, svcErr
	}

	checklist.ChecklistSchema = normalized
	checklist.Title = parsed.Title
	checklist.UpdatedAt = s.now()

	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.UpdateSchema(tx, id, normalized, checklist.UpdatedAt)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to update checklist schema: %v", err))
	}
	return checklist, nil
}

func (s *checklistService) ChangeStatus(ctx context.Context, id string, action lifecycle.Action) (*model.Checklist, *serviceerror.ServiceError) {
	if _, svcErr := s.gate.Require(ctx, permission.RoleAdmin); svcErr != nil {
		return nil, svcErr
	}

	checklist, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	next, err := lifecycle.Apply(checklist.Status, action)
	if err != nil {
		var te *lifecycle.TransitionError
		if errors.As(err, &te) {
			return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
				fmt.Sprintf("Cannot %s a checklist in %s status", te.Action, te.From))
		}
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, err.Error())
	}

	checklist.Status = next
	checklist.UpdatedAt = s.now()
	err = s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.UpdateStatus(tx, id, next, checklist.UpdatedAt)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to update checklist status: %v", err))
	}
	return checklist, nil
}

func (s *checklistService) DeleteChecklist(ctx context.Context, id string) *serviceerror.ServiceError {
	if _, svcErr := s.gate.Require(ctx, permission.RoleAdmin); svcErr != nil {
		return svcErr
	}

	checklist, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return svcErr
	}
	if svcErr := s.ensureFrameworkUnused(ctx, checklist.ComplianceID, "delete"); svcErr != nil {
		return svcErr
	}

	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.Delete(tx, id)
		},
	})
	if err != nil {
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to delete checklist: %v", err))
	}

	s.logger.WithContext(ctx).Info("Checklist deleted", log.String("checklist_id", id))
	return nil
}

// UploadDocument stores evidence for a document item of an active checklist
// and returns the key to reference from a submission.
func (s *checklistService) UploadDocument(ctx context.Context, id string, upload Upload) (*model.Document, *serviceerror.ServiceError) {
	if _, svcErr := s.gate.Require(ctx); svcErr != nil {
		return nil, svcErr
	}

	checklist, parsed, svcErr := s.loadActive(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	item, ok := findItem(parsed, upload.ItemID)
	if !ok {
		s.metrics.Upload("rejected")
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, fmt.Sprintf("Unknown checklist item: %s", upload.ItemID))
	}
	if item.Type != schema.ItemTypeDocument {
		s.metrics.Upload("rejected")
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, fmt.Sprintf("Item %q does not accept documents", item.Name))
	}
	if s.settings.MaxUploadBytes > 0 && upload.Size > s.settings.MaxUploadBytes {
		s.metrics.Upload("rejected")
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
			fmt.Sprintf("File exceeds the %d MB upload limit", s.settings.MaxUploadBytes>>20))
	}

	fileName := sanitizeFileName(upload.FileName)
	doc := &model.Document{
		Key:         documentPrefix(checklist.ID, item.ID) + utils.GenerateUUID() + "-" + fileName,
		ItemID:      item.ID,
		FileName:    fileName,
		ContentType: upload.ContentType,
		Size:        upload.Size,
	}

	err := s.objects.Put(ctx, doc.Key, upload.Body, storage.ObjectMetadata{
		ContentType: upload.ContentType,
		Size:        upload.Size,
		UserMetadata: map[string]string{
			"checklist-id": checklist.ID,
			"item-id":      item.ID,
		},
	})
	if err != nil {
		s.metrics.Upload("failed")
		return nil, serviceerror.CustomServiceError(serviceerror.ExternalServiceError, fmt.Sprintf("failed to store evidence: %v", err))
	}

	s.metrics.Upload("stored")
	s.logger.WithContext(ctx).Info("Evidence stored",
		log.String("checklist_id", checklist.ID), log.String("item_id", item.ID), log.String("key", doc.Key))
	return doc, nil
}

// SubmitResponse stores a checklist submission. Completed submissions must
// answer every item and reference evidence uploaded for this checklist.
func (s *checklistService) SubmitResponse(ctx context.Context, id string, req model.SubmitRequest) (*model.ChecklistResponse, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx)
	if svcErr != nil {
		return nil, svcErr
	}

	checklist, parsed, svcErr := s.loadActive(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	answers := req.Answers
	if answers == nil {
		answers = schema.ChecklistAnswers{}
	}

	response := &model.ChecklistResponse{
		ID:          utils.GenerateUUID(),
		ChecklistID: checklist.ID,
		UserID:      caller.UserID,
		Answers:     answers,
		Status:      responseStatusDraft,
		CreatedAt:   s.now(),
	}
	if caller.TenantID != "" {
		tenant := caller.TenantID
		response.TenantID = &tenant
	}

	if !req.Draft {
		if errs := schema.CheckChecklistAnswers(*parsed, answers); len(errs) > 0 {
			return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, errs.Error())
		}
		if svcErr := s.checkDocuments(ctx, checklist.ID, parsed, answers); svcErr != nil {
			return nil, svcErr
		}
		score := schema.ScoreChecklist(*parsed, answers, s.settings.PassThreshold)
		response.Status = responseStatusCompleted
		response.Score = &score
	}

	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.CreateResponse(tx, response)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to store checklist response: %v", err))
	}

	outcome := response.Status
	if response.Score != nil && response.Score.Result != schema.ResultNone {
		outcome = string(response.Score.Result)
	}
	s.metrics.Submission("checklist", outcome)
	return response, nil
}

func (s *checklistService) ListResponses(ctx context.Context, id string) ([]model.ChecklistResponse, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx, permission.ReviewerRoles...)
	if svcErr != nil {
		return nil, svcErr
	}
	if _, svcErr := s.load(ctx, id); svcErr != nil {
		return nil, svcErr
	}

	responses, err := s.store.ListResponses(ctx, id)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to list checklist responses: %v", err))
	}
	if caller.IsAdmin() {
		return responses, nil
	}

	visible := make([]model.ChecklistResponse, 0, len(responses))
	for _, r := range responses {
		if r.TenantID != nil && caller.CanSeeTenant(*r.TenantID) {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

func (s *checklistService) load(ctx context.Context, id string) (*model.Checklist, *serviceerror.ServiceError) {
	checklist, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to retrieve checklist: %v", err))
	}
	if checklist == nil {
		return nil, notFound()
	}
	return checklist, nil
}

func (s *checklistService) loadActive(ctx context.Context, id string) (*model.Checklist, *schema.ChecklistSchema, *serviceerror.ServiceError) {
	checklist, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, nil, svcErr
	}
	if checklist.Status != lifecycle.StatusActive {
		return nil, nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Checklist is not active")
	}
	parsed, err := schema.ParseChecklist(checklist.ChecklistSchema)
	if err != nil {
		return nil, nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, fmt.Sprintf("stored schema of checklist %s is invalid: %v", id, err))
	}
	return checklist, parsed, nil
}

// checkSchema parses a submitted document and returns it re-encoded in the
// sectioned shape, so legacy documents are never written back.
func (s *checklistService) checkSchema(raw string) (*schema.ChecklistSchema, []byte, *serviceerror.ServiceError) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "checklist_schema is required")
	}
	parsed, err := schema.ParseChecklist([]byte(raw))
	if err != nil {
		return nil, nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	if s.settings.StrictValidation {
		if errs := schema.ValidateChecklist(*parsed); len(errs) > 0 {
			return nil, nil, serviceerror.CustomServiceError(serviceerror.ValidationError, errs.Error())
		}
	}
	normalized, err := json.Marshal(parsed)
	if err != nil {
		return nil, nil, serviceerror.CustomServiceError(serviceerror.InternalServerError, fmt.Sprintf("failed to encode checklist schema: %v", err))
	}
	return parsed, normalized, nil
}

func (s *checklistService) checkDocuments(ctx context.Context, checklistID string, parsed *schema.ChecklistSchema, answers schema.ChecklistAnswers) *serviceerror.ServiceError {
	for _, item := range parsed.Items() {
		if item.Type != schema.ItemTypeDocument {
			continue
		}
		key := answers[item.ID].DocumentKey
		if path.Clean(key) != key || !strings.HasPrefix(key, documentPrefix(checklistID, item.ID)) {
			return serviceerror.CustomServiceError(serviceerror.ValidationError,
				fmt.Sprintf("Document for %q was not uploaded to this checklist", item.Name))
		}
		exists, err := s.objects.Exists(ctx, key)
		if err != nil {
			return serviceerror.CustomServiceError(serviceerror.ExternalServiceError, fmt.Sprintf("failed to check evidence: %v", err))
		}
		if !exists {
			return serviceerror.CustomServiceError(serviceerror.ValidationError,
				fmt.Sprintf("Document for %q was not found", item.Name))
		}
	}
	return nil
}

func (s *checklistService) ensureFrameworkUnused(ctx context.Context, complianceID, verb string) *serviceerror.ServiceError {
	used, err := s.frameworks.HasResponses(ctx, complianceID)
	if err != nil {
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to check framework responses: %v", err))
	}
	if used {
		return serviceerror.CustomServiceError(serviceerror.ConflictError,
			fmt.Sprintf("Cannot %s a checklist whose compliance framework already has responses", verb))
	}
	return nil
}

func findItem(s *schema.ChecklistSchema, itemID string) (schema.Item, bool) {
	for _, item := range s.Items() {
		if item.ID == itemID {
			return item, true
		}
	}
	return schema.Item{}, false
}

func documentPrefix(checklistID, itemID string) string {
	return path.Join("checklists", checklistID, itemID) + "/"
}

func sanitizeFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	clean := strings.Trim(unsafeFileChars.ReplaceAllString(base, "_"), "._")
	if clean == "" {
		return "document"
	}
	return clean
}

func notFound() *serviceerror.ServiceError {
	return serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "Checklist not found")
}
