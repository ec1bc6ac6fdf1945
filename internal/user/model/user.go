package model

import (
	"time"

	"github.com/complyhub/compliance-management-api/internal/permission"
)

// Profile is the application side of a user identity.
type Profile struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	Role      permission.Role `json:"role"`
	TenantID  *string         `json:"tenant_id,omitempty"`
	Revoked   bool            `json:"revoked"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Tenant returns the tenant id or an empty string.
func (p *Profile) Tenant() string {
	if p == nil || p.TenantID == nil {
		return ""
	}
	return *p.TenantID
}

// InviteRequest is the payload of POST /users/invite.
type InviteRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Role     string `json:"role" form:"role" validate:"required,oneof=user manager external_auditor admin"`
	TenantID string `json:"tenant_id" form:"tenant_id"`
}

// UpdateRoleRequest is the payload of PUT /users/:userId/role.
type UpdateRoleRequest struct {
	Role     string `json:"role" form:"role" validate:"required,oneof=user manager external_auditor admin"`
	TenantID string `json:"tenant_id" form:"tenant_id"`
}

// UpdateTenantRequest is the payload of PUT /users/:userId/tenant.
type UpdateTenantRequest struct {
	TenantID string `json:"tenant_id" form:"tenant_id" validate:"required"`
}
