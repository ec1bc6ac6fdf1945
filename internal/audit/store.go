package audit

import (
	"context"
	"errors"

	"github.com/complyhub/compliance-management-api/internal/audit/model"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/database/provider"
	rowutil "github.com/complyhub/compliance-management-api/internal/system/database/utils"
)

const auditSelect = `SELECT a.id, a.form_id, a.form_response_id, a.compliance_id, a.user_id, a.tenant_id,
		a.status, a.result, a.marks, a.max_marks, a.percentage, a.comments,
		a.verification_status, a.verified_by, a.verified_at, a.corrective_action,
		a.created_at, a.updated_at,
		JSON_UNQUOTE(JSON_EXTRACT(f.form_schema, '$.title')) AS form_title,
		c.name AS framework_name,
		p.email AS user_email
	FROM audit a
	LEFT JOIN form f ON a.form_id = f.id
	LEFT JOIN compliance c ON a.compliance_id = c.id
	LEFT JOIN profiles p ON a.user_id = p.user_id`

// ErrAlreadyVerified is returned when a verification update matches no unverified audit.
var ErrAlreadyVerified = errors.New("audit already verified")

// DBQuery objects for all audit operations
var (
	QueryCreateAudit = dbmodel.DBQuery{
		ID: "CREATE_AUDIT",
		Query: `INSERT INTO audit (id, form_id, form_response_id, compliance_id, user_id, tenant_id, status, result,
		        marks, max_marks, percentage, comments, verification_status, created_at, updated_at)
		        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	}

	QueryGetAuditByID = dbmodel.DBQuery{
		ID:    "GET_AUDIT_BY_ID",
		Query: auditSelect + " WHERE a.id = ?",
	}

	QueryListAudits = dbmodel.DBQuery{
		ID:    "LIST_AUDITS",
		Query: auditSelect + " ORDER BY a.created_at DESC",
	}

	QueryListAuditsByTenant = dbmodel.DBQuery{
		ID:    "LIST_AUDITS_BY_TENANT",
		Query: auditSelect + " WHERE a.tenant_id = ? ORDER BY a.created_at DESC",
	}

	QueryListAuditsByUser = dbmodel.DBQuery{
		ID:    "LIST_AUDITS_BY_USER",
		Query: auditSelect + " WHERE a.user_id = ? ORDER BY a.created_at DESC",
	}

	QueryUpdateAuditVerification = dbmodel.DBQuery{
		ID: "UPDATE_AUDIT_VERIFICATION",
		Query: `UPDATE audit SET verification_status = ?, verified_by = ?, verified_at = ?, corrective_action = ?, updated_at = ?
		        WHERE id = ? AND verified_at IS NULL`,
	}
)

// AuditStore defines the interface for audit data access operations
type AuditStore interface {
	GetByID(ctx context.Context, id string) (*model.Audit, error)
	List(ctx context.Context, scope model.Scope) ([]model.Audit, error)

	Create(tx dbmodel.TxInterface, a *model.Audit) error
	UpdateVerification(tx dbmodel.TxInterface, a *model.Audit) error
}

type store struct {
	dbClient provider.DBClientInterface
}

// NewAuditStore creates a new audit store
func NewAuditStore(dbClient provider.DBClientInterface) AuditStore {
	return &store{dbClient: dbClient}
}

func (s *store) GetByID(ctx context.Context, id string) (*model.Audit, error) {
	rows, err := s.dbClient.Query(ctx, QueryGetAuditByID, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToAudit(rows[0]), nil
}

// List returns audits newest first. A tenant scope wins over a user scope.
func (s *store) List(ctx context.Context, scope model.Scope) ([]model.Audit, error) {
	var rows []map[string]interface{}
	var err error
	switch {
	case scope.TenantID != "":
		rows, err = s.dbClient.Query(ctx, QueryListAuditsByTenant, scope.TenantID)
	case scope.UserID != "":
		rows, err = s.dbClient.Query(ctx, QueryListAuditsByUser, scope.UserID)
	default:
		rows, err = s.dbClient.Query(ctx, QueryListAudits)
	}
	if err != nil {
		return nil, err
	}

	audits := make([]model.Audit, 0, len(rows))
	for _, row := range rows {
		audits = append(audits, *mapToAudit(row))
	}
	return audits, nil
}

func (s *store) Create(tx dbmodel.TxInterface, a *model.Audit) error {
	_, err := tx.Exec(QueryCreateAudit.Query,
		a.ID, a.FormID, a.FormResponseID, a.ComplianceID, a.UserID, a.TenantID, a.Status, a.Result,
		a.Marks, a.MaxMarks, a.Percentage, a.Comments, a.VerificationStatus, a.CreatedAt, a.UpdatedAt)
	return err
}

// UpdateVerification records a decision. It returns ErrAlreadyVerified when
// another decision got there first.
func (s *store) UpdateVerification(tx dbmodel.TxInterface, a *model.Audit) error {
	result, err := tx.Exec(QueryUpdateAuditVerification.Query,
		a.VerificationStatus, a.VerifiedBy, a.VerifiedAt, a.CorrectiveAction, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyVerified
	}
	return nil
}

func mapToAudit(row map[string]interface{}) *model.Audit {
	return &model.Audit{
		ID:                 rowutil.String(row, "id"),
		FormID:             rowutil.String(row, "form_id"),
		FormResponseID:     rowutil.String(row, "form_response_id"),
		ComplianceID:       rowutil.String(row, "compliance_id"),
		UserID:             rowutil.String(row, "user_id"),
		TenantID:           rowutil.NullableString(row, "tenant_id"),
		Status:             rowutil.String(row, "status"),
		Result:             rowutil.NullableString(row, "result"),
		Marks:              rowutil.NullableFloat(row, "marks"),
		MaxMarks:           rowutil.NullableFloat(row, "max_marks"),
		Percentage:         rowutil.NullableFloat(row, "percentage"),
		Comments:           rowutil.NullableString(row, "comments"),
		VerificationStatus: rowutil.NullableString(row, "verification_status"),
		VerifiedBy:         rowutil.NullableString(row, "verified_by"),
		VerifiedAt:         rowutil.NullableTime(row, "verified_at"),
		CorrectiveAction:   rowutil.NullableString(row, "corrective_action"),
		CreatedAt:          rowutil.Time(row, "created_at"),
		UpdatedAt:          rowutil.Time(row, "updated_at"),
		FormTitle:          rowutil.String(row, "form_title"),
		FrameworkName:      rowutil.String(row, "framework_name"),
		UserEmail:          rowutil.String(row, "user_email"),
	}
}
