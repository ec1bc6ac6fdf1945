package checklist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/complyhub/compliance-management-api/internal/checklist/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/schema"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/database/provider"
	rowutil "github.com/complyhub/compliance-management-api/internal/system/database/utils"
)

// DBQuery objects for all checklist operations
var (
	QueryCreateChecklist = dbmodel.DBQuery{
		ID:    "CREATE_CHECKLIST",
		Query: "INSERT INTO checklist (id, compliance_id, checklist_schema, status, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetChecklistByID = dbmodel.DBQuery{
		ID:    "GET_CHECKLIST_BY_ID",
		Query: "SELECT id, compliance_id, checklist_schema, status, created_by, created_at, updated_at FROM checklist WHERE id = ?",
	}

	QueryListChecklists = dbmodel.DBQuery{
		ID:    "LIST_CHECKLISTS",
		Query: "SELECT id, compliance_id, checklist_schema, status, created_by, created_at, updated_at FROM checklist ORDER BY created_at DESC",
	}

	QueryListChecklistsByCompliance = dbmodel.DBQuery{
		ID:    "LIST_CHECKLISTS_BY_COMPLIANCE",
		Query: "SELECT id, compliance_id, checklist_schema, status, created_by, created_at, updated_at FROM checklist WHERE compliance_id = ? ORDER BY created_at DESC",
	}

	QueryUpdateChecklistSchema = dbmodel.DBQuery{
		ID:    "UPDATE_CHECKLIST_SCHEMA",
		Query: "UPDATE checklist SET checklist_schema = ?, updated_at = ? WHERE id = ?",
	}

	QueryUpdateChecklistStatus = dbmodel.DBQuery{
		ID:    "UPDATE_CHECKLIST_STATUS",
		Query: "UPDATE checklist SET status = ?, updated_at = ? WHERE id = ?",
	}

	QueryDeleteChecklistResponses = dbmodel.DBQuery{
		ID:    "DELETE_CHECKLIST_RESPONSES",
		Query: "DELETE FROM checklist_responses WHERE checklist_id = ?",
	}

	QueryDeleteChecklist = dbmodel.DBQuery{
		ID:    "DELETE_CHECKLIST",
		Query: "DELETE FROM checklist WHERE id = ?",
	}

	QueryCreateChecklistResponse = dbmodel.DBQuery{
		ID: "CREATE_CHECKLIST_RESPONSE",
		Query: `INSERT INTO checklist_responses (id, checklist_id, user_id, tenant_id, answers, status, result, percentage, created_at)
		        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	}

	QueryListChecklistResponses = dbmodel.DBQuery{
		ID: "LIST_CHECKLIST_RESPONSES",
		Query: `SELECT id, checklist_id, user_id, tenant_id, answers, status, result, percentage, created_at
		        FROM checklist_responses WHERE checklist_id = ? ORDER BY created_at DESC`,
	}
)

// ChecklistStore defines the interface for checklist data access operations
type ChecklistStore interface {
	GetByID(ctx context.Context, id string) (*model.Checklist, error)
	List(ctx context.Context, complianceID string) ([]model.Checklist, error)
	ListResponses(ctx context.Context, checklistID string) ([]model.ChecklistResponse, error)

	Create(tx dbmodel.TxInterface, c *model.Checklist) error
	UpdateSchema(tx dbmodel.TxInterface, id string, checklistSchema []byte, updatedAt time.Time) error
	UpdateStatus(tx dbmodel.TxInterface, id string, status lifecycle.Status, updatedAt time.Time) error
	Delete(tx dbmodel.TxInterface, id string) error
	CreateResponse(tx dbmodel.TxInterface, r *model.ChecklistResponse) error
}

type store struct {
	dbClient provider.DBClientInterface
}

// NewChecklistStore creates a new checklist store
func NewChecklistStore(dbClient provider.DBClientInterface) ChecklistStore {
	return &store{dbClient: dbClient}
}

func (s *store) GetByID(ctx context.Context, id string) (*model.Checklist, error) {
	rows, err := s.dbClient.Query(ctx, QueryGetChecklistByID, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToChecklist(rows[0]), nil
}

func (s *store) List(ctx context.Context, complianceID string) ([]model.Checklist, error) {
	var rows []map[string]interface{}
	var err error
	if complianceID == "" {
		rows, err = s.dbClient.Query(ctx, QueryListChecklists)
	} else {
		rows, err = s.dbClient.Query(ctx, QueryListChecklistsByCompliance, complianceID)
	}
	if err != nil {
		return nil, err
	}

	checklists := make([]model.Checklist, 0, len(rows))
	for _, row := range rows {
		checklists = append(checklists, *mapToChecklist(row))
	}
	return checklists, nil
}

func (s *store) ListResponses(ctx context.Context, checklistID string) ([]model.ChecklistResponse, error) {
	rows, err := s.dbClient.Query(ctx, QueryListChecklistResponses, checklistID)
	if err != nil {
		return nil, err
	}

	responses := make([]model.ChecklistResponse, 0, len(rows))
	for _, row := range rows {
		r := model.ChecklistResponse{
			ID:          rowutil.String(row, "id"),
			ChecklistID: rowutil.String(row, "checklist_id"),
			UserID:      rowutil.String(row, "user_id"),
			TenantID:    rowutil.NullableString(row, "tenant_id"),
			Status:      rowutil.String(row, "status"),
			CreatedAt:   rowutil.Time(row, "created_at"),
		}
		_ = json.Unmarshal([]byte(rowutil.String(row, "answers")), &r.Answers)
		if pct := rowutil.NullableFloat(row, "percentage"); pct != nil {
			r.Score = &schema.Score{Percentage: *pct}
			if res := rowutil.NullableString(row, "result"); res != nil {
				r.Score.Result = schema.Result(*res)
			}
		}
		responses = append(responses, r)
	}
	return responses, nil
}

func (s *store) Create(tx dbmodel.TxInterface, c *model.Checklist) error {
	_, err := tx.Exec(QueryCreateChecklist.Query,
		c.ID, c.ComplianceID, string(c.ChecklistSchema), string(c.Status), c.CreatedBy, c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *store) UpdateSchema(tx dbmodel.TxInterface, id string, checklistSchema []byte, updatedAt time.Time) error {
	_, err := tx.Exec(QueryUpdateChecklistSchema.Query, string(checklistSchema), updatedAt, id)
	return err
}

func (s *store) UpdateStatus(tx dbmodel.TxInterface, id string, status lifecycle.Status, updatedAt time.Time) error {
	_, err := tx.Exec(QueryUpdateChecklistStatus.Query, string(status), updatedAt, id)
	return err
}

// Delete removes the checklist together with its responses.
func (s *store) Delete(tx dbmodel.TxInterface, id string) error {
	if _, err := tx.Exec(QueryDeleteChecklistResponses.Query, id); err != nil {
		return err
	}
	_, err := tx.Exec(QueryDeleteChecklist.Query, id)
	return err
}

func (s *store) CreateResponse(tx dbmodel.TxInterface, r *model.ChecklistResponse) error {
	answers, err := json.Marshal(r.Answers)
	if err != nil {
		return err
	}

	var result *string
	var percentage *float64
	if r.Score != nil {
		percentage = &r.Score.Percentage
		if r.Score.Result != schema.ResultNone {
			res := string(r.Score.Result)
			result = &res
		}
	}

	_, err = tx.Exec(QueryCreateChecklistResponse.Query,
		r.ID, r.ChecklistID, r.UserID, r.TenantID, string(answers), r.Status, result, percentage, r.CreatedAt)
	return err
}

func mapToChecklist(row map[string]interface{}) *model.Checklist {
	raw := []byte(rowutil.String(row, "checklist_schema"))
	c := &model.Checklist{
		ID:           rowutil.String(row, "id"),
		ComplianceID: rowutil.String(row, "compliance_id"),
		Status:       lifecycle.Status(rowutil.String(row, "status")),
		CreatedBy:    rowutil.String(row, "created_by"),
		CreatedAt:    rowutil.Time(row, "created_at"),
		UpdatedAt:    rowutil.Time(row, "updated_at"),
	}
	if schema.IsValidJSON(raw) {
		c.ChecklistSchema = raw
		if parsed, err := schema.ParseChecklist(raw); err == nil {
			c.Title = parsed.Title
		}
	}
	return c
}
