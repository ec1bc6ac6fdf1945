package model

import (
	"time"

	"github.com/complyhub/compliance-management-api/internal/lifecycle"
)

// Compliance is a compliance framework: the container of forms and checklists.
type Compliance struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Status      lifecycle.Status `json:"status"`
	CreatedBy   string           `json:"created_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreateRequest is the payload of the create action.
type CreateRequest struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
}

// UpdateRequest is the payload of the update action.
type UpdateRequest struct {
	Name        string  `form:"name" json:"name"`
	Description *string `form:"description" json:"description"`
}
