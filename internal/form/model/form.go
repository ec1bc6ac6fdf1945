package model

import (
	"encoding/json"
	"time"

	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/schema"
)

// Form is a published form document belonging to a compliance framework.
type Form struct {
	ID           string           `json:"id"`
	ComplianceID string           `json:"compliance_id"`
	Title        string           `json:"title"`
	FormSchema   json.RawMessage  `json:"form_schema"`
	Status       lifecycle.Status `json:"status"`
	CreatedBy    string           `json:"created_by,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// FormResponse is one submission of a form.
type FormResponse struct {
	ID        string         `json:"id"`
	FormID    string         `json:"form_id"`
	UserID    string         `json:"user_id"`
	TenantID  *string        `json:"tenant_id,omitempty"`
	Answers   schema.Answers `json:"answers"`
	Status    string         `json:"status"`
	Score     *schema.Score  `json:"score,omitempty"`
	AuditID   string         `json:"audit_id,omitempty"`
	Comments  *string        `json:"comments,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreateRequest is the payload of the create action. FormSchema is a JSON document.
type CreateRequest struct {
	ComplianceID string `form:"compliance_id" json:"compliance_id"`
	FormSchema   string `form:"form_schema" json:"form_schema"`
	Status       string `form:"status" json:"status"`
}

// UpdateSchemaRequest replaces the schema of a form.
type UpdateSchemaRequest struct {
	FormSchema string `form:"form_schema" json:"form_schema"`
}

// SubmitRequest carries the answers of a submission.
type SubmitRequest struct {
	Answers  schema.Answers `json:"answers"`
	Draft    bool           `json:"draft"`
	Comments string         `json:"comments"`
}
