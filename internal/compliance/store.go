package compliance

import (
	"context"
	"time"

	"github.com/complyhub/compliance-management-api/internal/compliance/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/database/provider"
	rowutil "github.com/complyhub/compliance-management-api/internal/system/database/utils"
)

// DBQuery objects for all compliance framework operations
var (
	QueryCreateCompliance = dbmodel.DBQuery{
		ID:    "CREATE_COMPLIANCE",
		Query: "INSERT INTO compliance (id, name, description, status, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetComplianceByID = dbmodel.DBQuery{
		ID:    "GET_COMPLIANCE_BY_ID",
		Query: "SELECT id, name, description, status, created_by, created_at, updated_at FROM compliance WHERE id = ?",
	}

	QueryGetComplianceByName = dbmodel.DBQuery{
		ID:    "GET_COMPLIANCE_BY_NAME",
		Query: "SELECT id, name, description, status, created_by, created_at, updated_at FROM compliance WHERE name = ?",
	}

	QueryListCompliance = dbmodel.DBQuery{
		ID:    "LIST_COMPLIANCE",
		Query: "SELECT id, name, description, status, created_by, created_at, updated_at FROM compliance ORDER BY created_at DESC",
	}

	QueryListComplianceByStatus = dbmodel.DBQuery{
		ID:    "LIST_COMPLIANCE_BY_STATUS",
		Query: "SELECT id, name, description, status, created_by, created_at, updated_at FROM compliance WHERE status = ? ORDER BY created_at DESC",
	}

	QueryUpdateCompliance = dbmodel.DBQuery{
		ID:    "UPDATE_COMPLIANCE",
		Query: "UPDATE compliance SET name = ?, description = ?, updated_at = ? WHERE id = ?",
	}

	QueryUpdateComplianceStatus = dbmodel.DBQuery{
		ID:    "UPDATE_COMPLIANCE_STATUS",
		Query: "UPDATE compliance SET status = ?, updated_at = ? WHERE id = ?",
	}

	QueryDeleteComplianceForms = dbmodel.DBQuery{
		ID:    "DELETE_COMPLIANCE_FORMS",
		Query: "DELETE FROM form WHERE compliance_id = ?",
	}

	QueryDeleteComplianceChecklists = dbmodel.DBQuery{
		ID:    "DELETE_COMPLIANCE_CHECKLISTS",
		Query: "DELETE FROM checklist WHERE compliance_id = ?",
	}

	QueryDeleteCompliance = dbmodel.DBQuery{
		ID:    "DELETE_COMPLIANCE",
		Query: "DELETE FROM compliance WHERE id = ?",
	}

	QueryCountComplianceResponses = dbmodel.DBQuery{
		ID: "COUNT_COMPLIANCE_RESPONSES",
		Query: `SELECT
		            (SELECT COUNT(*) FROM form_responses fr INNER JOIN form f ON fr.form_id = f.id WHERE f.compliance_id = ?) +
		            (SELECT COUNT(*) FROM checklist_responses cr INNER JOIN checklist c ON cr.checklist_id = c.id WHERE c.compliance_id = ?)
		        AS count`,
	}
)

// ComplianceStore defines the interface for compliance framework data access operations
type ComplianceStore interface {
	// Read operations - use dbClient directly
	GetByID(ctx context.Context, id string) (*model.Compliance, error)
	GetByName(ctx context.Context, name string) (*model.Compliance, error)
	List(ctx context.Context, status lifecycle.Status) ([]model.Compliance, error)
	HasResponses(ctx context.Context, id string) (bool, error)

	// Write operations - transactional with tx parameter
	Create(tx dbmodel.TxInterface, c *model.Compliance) error
	Update(tx dbmodel.TxInterface, c *model.Compliance) error
	UpdateStatus(tx dbmodel.TxInterface, id string, status lifecycle.Status, updatedAt time.Time) error
	Delete(tx dbmodel.TxInterface, id string) error
}

type store struct {
	dbClient provider.DBClientInterface
}

// NewComplianceStore creates a new compliance framework store
func NewComplianceStore(dbClient provider.DBClientInterface) ComplianceStore {
	return &store{dbClient: dbClient}
}

func (s *store) GetByID(ctx context.Context, id string) (*model.Compliance, error) {
	rows, err := s.dbClient.Query(ctx, QueryGetComplianceByID, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToCompliance(rows[0]), nil
}

func (s *store) GetByName(ctx context.Context, name string) (*model.Compliance, error) {
	rows, err := s.dbClient.Query(ctx, QueryGetComplianceByName, name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToCompliance(rows[0]), nil
}

// List returns all frameworks, or only those in status when it is set.
func (s *store) List(ctx context.Context, status lifecycle.Status) ([]model.Compliance, error) {
	var rows []map[string]interface{}
	var err error
	if status == "" {
		rows, err = s.dbClient.Query(ctx, QueryListCompliance)
	} else {
		rows, err = s.dbClient.Query(ctx, QueryListComplianceByStatus, string(status))
	}
	if err != nil {
		return nil, err
	}

	frameworks := make([]model.Compliance, 0, len(rows))
	for _, row := range rows {
		frameworks = append(frameworks, *mapToCompliance(row))
	}
	return frameworks, nil
}

// HasResponses reports whether any form or checklist of the framework was answered.
func (s *store) HasResponses(ctx context.Context, id string) (bool, error) {
	rows, err := s.dbClient.Query(ctx, QueryCountComplianceResponses, id, id)
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	return rowutil.Int64(rows[0], "count") > 0, nil
}

func (s *store) Create(tx dbmodel.TxInterface, c *model.Compliance) error {
	_, err := tx.Exec(QueryCreateCompliance.Query,
		c.ID, c.Name, c.Description, string(c.Status), c.CreatedBy, c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *store) Update(tx dbmodel.TxInterface, c *model.Compliance) error {
	_, err := tx.Exec(QueryUpdateCompliance.Query, c.Name, c.Description, c.UpdatedAt, c.ID)
	return err
}

func (s *store) UpdateStatus(tx dbmodel.TxInterface, id string, status lifecycle.Status, updatedAt time.Time) error {
	_, err := tx.Exec(QueryUpdateComplianceStatus.Query, string(status), updatedAt, id)
	return err
}

// Delete removes the framework with its forms and checklists.
func (s *store) Delete(tx dbmodel.TxInterface, id string) error {
	for _, q := range []dbmodel.DBQuery{QueryDeleteComplianceForms, QueryDeleteComplianceChecklists, QueryDeleteCompliance} {
		if _, err := tx.Exec(q.Query, id); err != nil {
			return err
		}
	}
	return nil
}

func mapToCompliance(row map[string]interface{}) *model.Compliance {
	return &model.Compliance{
		ID:          rowutil.String(row, "id"),
		Name:        rowutil.String(row, "name"),
		Description: rowutil.NullableString(row, "description"),
		Status:      lifecycle.Status(rowutil.String(row, "status")),
		CreatedBy:   rowutil.String(row, "created_by"),
		CreatedAt:   rowutil.Time(row, "created_at"),
		UpdatedAt:   rowutil.Time(row, "updated_at"),
	}
}
