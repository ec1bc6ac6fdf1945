package form

import (
	"context"
	"encoding/json"
	"time"

	"github.com/complyhub/compliance-management-api/internal/form/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/schema"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/database/provider"
	rowutil "github.com/complyhub/compliance-management-api/internal/system/database/utils"
)

// DBQuery objects for all form operations
var (
	QueryCreateForm = dbmodel.DBQuery{
		ID:    "CREATE_FORM",
		Query: "INSERT INTO form (id, compliance_id, form_schema, status, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetFormByID = dbmodel.DBQuery{
		ID:    "GET_FORM_BY_ID",
		Query: "SELECT id, compliance_id, form_schema, status, created_by, created_at, updated_at FROM form WHERE id = ?",
	}

	QueryListForms = dbmodel.DBQuery{
		ID:    "LIST_FORMS",
		Query: "SELECT id, compliance_id, form_schema, status, created_by, created_at, updated_at FROM form ORDER BY created_at DESC",
	}

	QueryListFormsByCompliance = dbmodel.DBQuery{
		ID:    "LIST_FORMS_BY_COMPLIANCE",
		Query: "SELECT id, compliance_id, form_schema, status, created_by, created_at, updated_at FROM form WHERE compliance_id = ? ORDER BY created_at DESC",
	}

	QueryUpdateFormSchema = dbmodel.DBQuery{
		ID:    "UPDATE_FORM_SCHEMA",
		Query: "UPDATE form SET form_schema = ?, updated_at = ? WHERE id = ?",
	}

	QueryUpdateFormStatus = dbmodel.DBQuery{
		ID:    "UPDATE_FORM_STATUS",
		Query: "UPDATE form SET status = ?, updated_at = ? WHERE id = ?",
	}

	QueryDeleteFormAudits = dbmodel.DBQuery{
		ID:    "DELETE_FORM_AUDITS",
		Query: "DELETE FROM audit WHERE form_id = ?",
	}

	QueryDeleteFormResponses = dbmodel.DBQuery{
		ID:    "DELETE_FORM_RESPONSES",
		Query: "DELETE FROM form_responses WHERE form_id = ?",
	}

	QueryDeleteForm = dbmodel.DBQuery{
		ID:    "DELETE_FORM",
		Query: "DELETE FROM form WHERE id = ?",
	}

	QueryCreateFormResponse = dbmodel.DBQuery{
		ID: "CREATE_FORM_RESPONSE",
		Query: `INSERT INTO form_responses (id, form_id, user_id, tenant_id, answers, status, marks, max_marks, percentage, result, comments, created_at)
		        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	}

	QueryListFormResponses = dbmodel.DBQuery{
		ID: "LIST_FORM_RESPONSES",
		Query: `SELECT id, form_id, user_id, tenant_id, answers, status, marks, max_marks, percentage, result, comments, created_at
		        FROM form_responses WHERE form_id = ? ORDER BY created_at DESC`,
	}
)

// FormStore defines the interface for form data access operations
type FormStore interface {
	GetByID(ctx context.Context, id string) (*model.Form, error)
	List(ctx context.Context, complianceID string) ([]model.Form, error)
	ListResponses(ctx context.Context, formID string) ([]model.FormResponse, error)

	Create(tx dbmodel.TxInterface, f *model.Form) error
	UpdateSchema(tx dbmodel.TxInterface, id string, formSchema []byte, updatedAt time.Time) error
	UpdateStatus(tx dbmodel.TxInterface, id string, status lifecycle.Status, updatedAt time.Time) error
	Delete(tx dbmodel.TxInterface, id string) error
	CreateResponse(tx dbmodel.TxInterface, r *model.FormResponse) error
}

type store struct {
	dbClient provider.DBClientInterface
}

// NewFormStore creates a new form store
func NewFormStore(dbClient provider.DBClientInterface) FormStore {
	return &store{dbClient: dbClient}
}

func (s *store) GetByID(ctx context.Context, id string) (*model.Form, error) {
	rows, err := s.dbClient.Query(ctx, QueryGetFormByID, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToForm(rows[0]), nil
}

// List returns every form, or only the forms of complianceID when it is set.
func (s *store) List(ctx context.Context, complianceID string) ([]model.Form, error) {
	var rows []map[string]interface{}
	var err error
	if complianceID == "" {
		rows, err = s.dbClient.Query(ctx, QueryListForms)
	} else {
		rows, err = s.dbClient.Query(ctx, QueryListFormsByCompliance, complianceID)
	}
	if err != nil {
		return nil, err
	}

	forms := make([]model.Form, 0, len(rows))
	for _, row := range rows {
		forms = append(forms, *mapToForm(row))
	}
	return forms, nil
}

func (s *store) ListResponses(ctx context.Context, formID string) ([]model.FormResponse, error) {
	rows, err := s.dbClient.Query(ctx, QueryListFormResponses, formID)
	if err != nil {
		return nil, err
	}

	responses := make([]model.FormResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, mapToFormResponse(row))
	}
	return responses, nil
}

func (s *store) Create(tx dbmodel.TxInterface, f *model.Form) error {
	_, err := tx.Exec(QueryCreateForm.Query,
		f.ID, f.ComplianceID, string(f.FormSchema), string(f.Status), f.CreatedBy, f.CreatedAt, f.UpdatedAt)
	return err
}

func (s *store) UpdateSchema(tx dbmodel.TxInterface, id string, formSchema []byte, updatedAt time.Time) error {
	_, err := tx.Exec(QueryUpdateFormSchema.Query, string(formSchema), updatedAt, id)
	return err
}

func (s *store) UpdateStatus(tx dbmodel.TxInterface, id string, status lifecycle.Status, updatedAt time.Time) error {
	_, err := tx.Exec(QueryUpdateFormStatus.Query, string(status), updatedAt, id)
	return err
}

// Delete removes the form together with its responses and audits.
func (s *store) Delete(tx dbmodel.TxInterface, id string) error {
	for _, q := range []dbmodel.DBQuery{QueryDeleteFormAudits, QueryDeleteFormResponses, QueryDeleteForm} {
		if _, err := tx.Exec(q.Query, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *store) CreateResponse(tx dbmodel.TxInterface, r *model.FormResponse) error {
	answers, err := json.Marshal(r.Answers)
	if err != nil {
		return err
	}

	var marks, maxMarks, percentage *float64
	var result *string
	if r.Score != nil {
		marks, maxMarks, percentage = &r.Score.Marks, &r.Score.MaxMarks, &r.Score.Percentage
		if r.Score.Result != schema.ResultNone {
			res := string(r.Score.Result)
			result = &res
		}
	}

	_, err = tx.Exec(QueryCreateFormResponse.Query,
		r.ID, r.FormID, r.UserID, r.TenantID, string(answers), r.Status, marks, maxMarks, percentage, result, r.Comments, r.CreatedAt)
	return err
}

func mapToForm(row map[string]interface{}) *model.Form {
	raw := rowutil.String(row, "form_schema")
	f := &model.Form{
		ID:           rowutil.String(row, "id"),
		ComplianceID: rowutil.String(row, "compliance_id"),
		Status:       lifecycle.Status(rowutil.String(row, "status")),
		CreatedBy:    rowutil.String(row, "created_by"),
		CreatedAt:    rowutil.Time(row, "created_at"),
		UpdatedAt:    rowutil.Time(row, "updated_at"),
	}
	if schema.IsValidJSON([]byte(raw)) {
		f.FormSchema = json.RawMessage(raw)
		if parsed, err := schema.ParseForm(f.FormSchema); err == nil {
			f.Title = parsed.Title
		}
	}
	return f
}

func mapToFormResponse(row map[string]interface{}) model.FormResponse {
	r := model.FormResponse{
		ID:        rowutil.String(row, "id"),
		FormID:    rowutil.String(row, "form_id"),
		UserID:    rowutil.String(row, "user_id"),
		TenantID:  rowutil.NullableString(row, "tenant_id"),
		Status:    rowutil.String(row, "status"),
		Comments:  rowutil.NullableString(row, "comments"),
		CreatedAt: rowutil.Time(row, "created_at"),
	}
	_ = json.Unmarshal([]byte(rowutil.String(row, "answers")), &r.Answers)

	if pct := rowutil.NullableFloat(row, "percentage"); pct != nil {
		score := &schema.Score{Percentage: *pct}
		if v := rowutil.NullableFloat(row, "marks"); v != nil {
			score.Marks = *v
		}
		if v := rowutil.NullableFloat(row, "max_marks"); v != nil {
			score.MaxMarks = *v
		}
		if res := rowutil.NullableString(row, "result"); res != nil {
			score.Result = schema.Result(*res)
		}
		r.Score = score
	}
	return r
}
