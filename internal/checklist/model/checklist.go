package model

import (
	"encoding/json"
	"time"

	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/schema"
)

// Checklist is a sectioned list of evidence items belonging to a compliance framework.
type Checklist struct {
	ID              string           `json:"id"`
	ComplianceID    string           `json:"compliance_id"`
	Title           string           `json:"title"`
	ChecklistSchema json.RawMessage  `json:"checklist_schema"`
	Status          lifecycle.Status `json:"status"`
	CreatedBy       string           `json:"created_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ChecklistResponse is one submission of a checklist.
type ChecklistResponse struct {
	ID          string                  `json:"id"`
	ChecklistID string                  `json:"checklist_id"`
	UserID      string                  `json:"user_id"`
	TenantID    *string                 `json:"tenant_id,omitempty"`
	Answers     schema.ChecklistAnswers `json:"answers"`
	Status      string                  `json:"status"`
	Score       *schema.Score           `json:"score,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// EditView is a checklist prepared for the editor. Legacy documents arrive
// already moved into a single section.
type EditView struct {
	ID              string                 `json:"id"`
	ComplianceID    string                 `json:"compliance_id"`
	Status          lifecycle.Status       `json:"status"`
	Legacy          bool                   `json:"legacy"`
	ChecklistSchema schema.ChecklistSchema `json:"checklist_schema"`
}

// Document is an uploaded evidence file.
type Document struct {
	Key         string `json:"key"`
	ItemID      string `json:"item_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// CreateRequest is the payload of the create action. ChecklistSchema is a JSON document.
type CreateRequest struct {
	ComplianceID    string `form:"compliance_id" json:"compliance_id"`
	ChecklistSchema string `form:"checklist_schema" json:"checklist_schema"`
	Status          string `form:"status" json:"status"`
}

// UpdateSchemaRequest replaces the schema of a checklist.
type UpdateSchemaRequest struct {
	ChecklistSchema string `form:"checklist_schema" json:"checklist_schema"`
}

// SubmitRequest carries the answers of a submission.
type SubmitRequest struct {
	Answers schema.ChecklistAnswers `json:"answers"`
	Draft   bool                    `json:"draft"`
}
