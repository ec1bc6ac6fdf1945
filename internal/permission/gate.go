// Package permission resolves the caller of each action and checks its role.
package permission

import (
	"context"
	"fmt"

	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/log"
	"github.com/complyhub/compliance-management-api/internal/system/security"
)

// Role is a profile role.
type Role string

const (
	RoleUser            Role = "user"
	RoleManager         Role = "manager"
	RoleExternalAuditor Role = "external_auditor"
	RoleAdmin           Role = "admin"
)

// AllRoles lists every role in privilege order.
var AllRoles = []Role{RoleUser, RoleManager, RoleExternalAuditor, RoleAdmin}

// ReviewerRoles may read audit history and dashboards across a tenant.
var ReviewerRoles = []Role{RoleAdmin, RoleManager, RoleExternalAuditor}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Caller is the resolved profile of the user behind a request.
type Caller struct {
	UserID    string
	ProfileID string
	Email     string
	Role      Role
	TenantID  string
	Revoked   bool
}

// IsAdmin reports whether the caller is an admin.
func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// HasRole reports whether the caller holds one of roles.
func (c *Caller) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// CanSeeTenant reports whether the caller may read data of tenantID.
// Admins see every tenant; everyone else only their own.
func (c *Caller) CanSeeTenant(tenantID string) bool {
	if c.IsAdmin() {
		return true
	}
	return c.TenantID != "" && c.TenantID == tenantID
}

// ProfileSource loads the current profile of a user. A nil caller with a nil
// error means no profile exists.
type ProfileSource interface {
	GetCaller(ctx context.Context, userID string) (*Caller, error)
}

// Gate checks the caller of every action against its allowed roles.
type Gate interface {
	Require(ctx context.Context, roles ...Role) (*Caller, *serviceerror.ServiceError)
}

type gate struct {
	source ProfileSource
	logger *log.Logger
}

// NewGate creates a gate reading profiles from source.
func NewGate(source ProfileSource) Gate {
	return &gate{
		source: source,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "PermissionGate")),
	}
}

// Require resolves the caller from ctx and checks it holds one of roles. An
// empty roles list admits any signed-in, non-revoked profile. The profile is
// read again on every call; nothing is cached between actions.
func (g *gate) Require(ctx context.Context, roles ...Role) (*Caller, *serviceerror.ServiceError) {
	userID := security.UserIDFromContext(ctx)
	if userID == "" {
		return nil, unauthorized()
	}

	caller, err := g.source.GetCaller(ctx, userID)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError,
			fmt.Sprintf("failed to load profile: %v", err))
	}
	if caller == nil || caller.Revoked {
		g.logger.WithContext(ctx).Debug("Rejected caller without an active profile", log.String("user_id", userID))
		return nil, unauthorized()
	}

	if len(roles) > 0 && !caller.HasRole(roles...) {
		g.logger.WithContext(ctx).Debug("Rejected caller with insufficient role",
			log.String("user_id", userID), log.String("role", string(caller.Role)))
		return nil, serviceerror.CustomServiceError(serviceerror.ForbiddenError, serviceerror.ForbiddenError.ErrorDescription)
	}
	return caller, nil
}

func unauthorized() *serviceerror.ServiceError {
	return serviceerror.CustomServiceError(serviceerror.UnauthorizedError, serviceerror.UnauthorizedError.ErrorDescription)
}
