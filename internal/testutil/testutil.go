// Package testutil holds fakes shared by service and handler tests.
package testutil

import (
	"context"

	"github.com/complyhub/compliance-management-api/internal/permission"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/security"
)

// Fixed callers used across tests.
var (
	Admin          = &permission.Caller{UserID: "admin-1", ProfileID: "p-admin-1", Email: "admin@example.com", Role: permission.RoleAdmin}
	Manager        = &permission.Caller{UserID: "manager-1", ProfileID: "p-manager-1", Email: "manager@example.com", Role: permission.RoleManager, TenantID: "tenant-a"}
	OtherManager   = &permission.Caller{UserID: "manager-2", ProfileID: "p-manager-2", Email: "manager2@example.com", Role: permission.RoleManager, TenantID: "tenant-b"}
	Auditor        = &permission.Caller{UserID: "auditor-1", ProfileID: "p-auditor-1", Email: "auditor@example.com", Role: permission.RoleExternalAuditor, TenantID: "tenant-a"}
	User           = &permission.Caller{UserID: "user-1", ProfileID: "p-user-1", Email: "user@example.com", Role: permission.RoleUser, TenantID: "tenant-a"}
	RevokedManager = &permission.Caller{UserID: "manager-9", ProfileID: "p-manager-9", Email: "gone@example.com", Role: permission.RoleManager, TenantID: "tenant-a", Revoked: true}
)

// Profiles is an in-memory ProfileSource keyed by user id.
type Profiles map[string]*permission.Caller

// GetCaller returns a copy of the stored caller so tests cannot leak mutations.
func (p Profiles) GetCaller(_ context.Context, userID string) (*permission.Caller, error) {
	c, ok := p[userID]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

// DefaultProfiles returns the fixed callers above.
func DefaultProfiles() Profiles {
	p := Profiles{}
	for _, c := range []*permission.Caller{Admin, Manager, OtherManager, Auditor, User, RevokedManager} {
		p[c.UserID] = c
	}
	return p
}

// Gate returns a real permission gate over DefaultProfiles.
func Gate() permission.Gate {
	return permission.NewGate(DefaultProfiles())
}

// As returns a context carrying the identity of caller.
func As(caller *permission.Caller) context.Context {
	return security.WithUserID(context.Background(), caller.UserID)
}

// Anonymous returns a context without identity.
func Anonymous() context.Context {
	return context.Background()
}

// Transactioner runs queries with a nil transaction; store mocks ignore it.
type Transactioner struct {
	Err   error
	Calls int
}

var _ dbmodel.Transactioner = (*Transactioner)(nil)

func (t *Transactioner) ExecuteTransaction(_ context.Context, queries []func(tx dbmodel.TxInterface) error) error {
	t.Calls++
	if t.Err != nil {
		return t.Err
	}
	for _, q := range queries {
		if err := q(nil); err != nil {
			return err
		}
	}
	return nil
}
