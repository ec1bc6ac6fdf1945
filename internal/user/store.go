package user

import (
	"context"
	"time"

	"github.com/complyhub/compliance-management-api/internal/permission"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/database/provider"
	rowutil "github.com/complyhub/compliance-management-api/internal/system/database/utils"
	"github.com/complyhub/compliance-management-api/internal/user/model"
)

const profileColumns = "id, user_id, email, role, tenant_id, revoked, created_at, updated_at"

// DBQuery objects for all profile operations
var (
	QueryCreateProfile = dbmodel.DBQuery{
		ID:    "CREATE_PROFILE",
		Query: "INSERT INTO profiles (" + profileColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
	}

	QueryGetProfileByUserID = dbmodel.DBQuery{
		ID:    "GET_PROFILE_BY_USER_ID",
		Query: "SELECT " + profileColumns + " FROM profiles WHERE user_id = ?",
	}

	QueryGetProfileByEmail = dbmodel.DBQuery{
		ID:    "GET_PROFILE_BY_EMAIL",
		Query: "SELECT " + profileColumns + " FROM profiles WHERE LOWER(email) = LOWER(?)",
	}

	QueryListProfiles = dbmodel.DBQuery{
		ID:    "LIST_PROFILES",
		Query: "SELECT " + profileColumns + " FROM profiles ORDER BY created_at DESC",
	}

	QueryListProfilesByTenant = dbmodel.DBQuery{
		ID:    "LIST_PROFILES_BY_TENANT",
		Query: "SELECT " + profileColumns + " FROM profiles WHERE tenant_id = ? ORDER BY created_at DESC",
	}

	QueryUpdateProfileRole = dbmodel.DBQuery{
		ID:    "UPDATE_PROFILE_ROLE",
		Query: "UPDATE profiles SET role = ?, tenant_id = ?, updated_at = ? WHERE user_id = ?",
	}

	QueryUpdateProfileTenant = dbmodel.DBQuery{
		ID:    "UPDATE_PROFILE_TENANT",
		Query: "UPDATE profiles SET tenant_id = ?, updated_at = ? WHERE user_id = ?",
	}

	QueryUpdateProfileRevoked = dbmodel.DBQuery{
		ID:    "UPDATE_PROFILE_REVOKED",
		Query: "UPDATE profiles SET revoked = ?, updated_at = ? WHERE user_id = ?",
	}

	QueryDeleteProfile = dbmodel.DBQuery{
		ID:    "DELETE_PROFILE",
		Query: "DELETE FROM profiles WHERE user_id = ?",
	}
)

// UserStore defines the interface for profile data access operations. It also
// serves as the profile source of the permission gate.
type UserStore interface {
	permission.ProfileSource

	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	List(ctx context.Context, tenantID string) ([]model.Profile, error)

	Create(tx dbmodel.TxInterface, p *model.Profile) error
	UpdateRole(tx dbmodel.TxInterface, userID string, role permission.Role, tenantID *string, updatedAt time.Time) error
	UpdateTenant(tx dbmodel.TxInterface, userID string, tenantID *string, updatedAt time.Time) error
	SetRevoked(tx dbmodel.TxInterface, userID string, revoked bool, updatedAt time.Time) error
	Delete(tx dbmodel.TxInterface, userID string) error
}

type store struct {
	dbClient provider.DBClientInterface
}

// NewUserStore creates a new profile store
func NewUserStore(dbClient provider.DBClientInterface) UserStore {
	return &store{dbClient: dbClient}
}

// GetCaller resolves the permission view of a profile.
func (s *store) GetCaller(ctx context.Context, userID string) (*permission.Caller, error) {
	p, err := s.GetByUserID(ctx, userID)
	if err != nil || p == nil {
		return nil, err
	}
	return &permission.Caller{
		UserID:    p.UserID,
		ProfileID: p.ID,
		Email:     p.Email,
		Role:      p.Role,
		TenantID:  p.Tenant(),
		Revoked:   p.Revoked,
	}, nil
}

func (s *store) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	return s.getOne(ctx, QueryGetProfileByUserID, userID)
}

func (s *store) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return s.getOne(ctx, QueryGetProfileByEmail, email)
}

func (s *store) getOne(ctx context.Context, q dbmodel.DBQuery, arg string) (*model.Profile, error) {
	rows, err := s.dbClient.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return mapToProfile(rows[0]), nil
}

// List returns every profile, or the profiles of one tenant when tenantID is set.
func (s *store) List(ctx context.Context, tenantID string) ([]model.Profile, error) {
	var rows []map[string]interface{}
	var err error
	if tenantID == "" {
		rows, err = s.dbClient.Query(ctx, QueryListProfiles)
	} else {
		rows, err = s.dbClient.Query(ctx, QueryListProfilesByTenant, tenantID)
	}
	if err != nil {
		return nil, err
	}

	profiles := make([]model.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, *mapToProfile(row))
	}
	return profiles, nil
}

func (s *store) Create(tx dbmodel.TxInterface, p *model.Profile) error {
	_, err := tx.Exec(QueryCreateProfile.Query,
		p.ID, p.UserID, p.Email, string(p.Role), p.TenantID, p.Revoked, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *store) UpdateRole(tx dbmodel.TxInterface, userID string, role permission.Role, tenantID *string, updatedAt time.Time) error {
	_, err := tx.Exec(QueryUpdateProfileRole.Query, string(role), tenantID, updatedAt, userID)
	return err
}

func (s *store) UpdateTenant(tx dbmodel.TxInterface, userID string, tenantID *string, updatedAt time.Time) error {
	_, err := tx.Exec(QueryUpdateProfileTenant.Query, tenantID, updatedAt, userID)
	return err
}

func (s *store) SetRevoked(tx dbmodel.TxInterface, userID string, revoked bool, updatedAt time.Time) error {
	_, err := tx.Exec(QueryUpdateProfileRevoked.Query, revoked, updatedAt, userID)
	return err
}

func (s *store) Delete(tx dbmodel.TxInterface, userID string) error {
	_, err := tx.Exec(QueryDeleteProfile.Query, userID)
	return err
}

func mapToProfile(row map[string]interface{}) *model.Profile {
	return &model.Profile{
		ID:        rowutil.String(row, "id"),
		UserID:    rowutil.String(row, "user_id"),
		Email:     rowutil.String(row, "email"),
		Role:      permission.Role(rowutil.String(row, "role")),
		TenantID:  rowutil.NullableString(row, "tenant_id"),
		Revoked:   rowutil.Bool(row, "revoked"),
		CreatedAt: rowutil.Time(row, "created_at"),
		UpdatedAt: rowutil.Time(row, "updated_at"),
	}
}
