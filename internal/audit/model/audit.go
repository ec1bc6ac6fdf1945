package model

import (
	"time"
)

// Audit status values.
const (
	StatusCompleted = "completed"
	StatusDraft     = "draft"
)

// Verification status values.
const (
	VerificationPending  = "pending"
	VerificationAccepted = "accepted"
	VerificationRejected = "rejected"
)

// Audit is the reviewable record written for every form submission.
type Audit struct {
	ID                 string     `json:"id"`
	FormID             string     `json:"form_id"`
	FormResponseID     string     `json:"form_response_id"`
	ComplianceID       string     `json:"compliance_id"`
	UserID             string     `json:"user_id"`
	TenantID           *string    `json:"tenant_id,omitempty"`
	Status             string     `json:"status"`
	Result             *string    `json:"result,omitempty"`
	Marks              *float64   `json:"marks,omitempty"`
	MaxMarks           *float64   `json:"max_marks,omitempty"`
	Percentage         *float64   `json:"percentage,omitempty"`
	Comments           *string    `json:"comments,omitempty"`
	VerificationStatus *string    `json:"verification_status,omitempty"`
	VerifiedBy         *string    `json:"verified_by,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	CorrectiveAction   *string    `json:"corrective_action,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	FormTitle     string `json:"form_title,omitempty"`
	FrameworkName string `json:"framework_name,omitempty"`
	UserEmail     string `json:"user_email,omitempty"`
}

// Scope restricts which audits a listing returns. Empty fields do not restrict.
type Scope struct {
	TenantID string
	UserID   string
}

// Filter narrows audit history.
type Filter struct {
	Status             string `form:"status"`
	Result             string `form:"result"`
	VerificationStatus string `form:"verification_status"`
	ComplianceID       string `form:"compliance_id"`
	From               string `form:"from"`
	To                 string `form:"to"`
	Search             string `form:"search"`
	SortBy             string `form:"sort_by"`
	SortOrder          string `form:"sort_order"`
}

// VerifyRequest is the payload of the verify action.
type VerifyRequest struct {
	Decision         string `form:"decision" json:"decision" validate:"required,oneof=accept reject"`
	CorrectiveAction string `form:"corrective_action" json:"corrective_action"`
}
