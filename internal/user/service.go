package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/complyhub/compliance-management-api/internal/permission"
	"github.com/complyhub/compliance-management-api/internal/system/cache"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/log"
	"github.com/complyhub/compliance-management-api/internal/system/mailer"
	"github.com/complyhub/compliance-management-api/internal/system/metrics"
	"github.com/complyhub/compliance-management-api/internal/system/utils"
	"github.com/complyhub/compliance-management-api/internal/user/model"
)

const inviteLockTTL = 30 * time.Second

// UserService defines the exported service interface
type UserService interface {
	InviteUser(ctx context.Context, req model.InviteRequest) (*model.Profile, *serviceerror.ServiceError)
	ListUsers(ctx context.Context) ([]model.Profile, *serviceerror.ServiceError)
	UpdateRole(ctx context.Context, userID string, req model.UpdateRoleRequest) (*model.Profile, *serviceerror.ServiceError)
	UpdateTenant(ctx context.Context, userID string, req model.UpdateTenantRequest) (*model.Profile, *serviceerror.ServiceError)
	RevokeUser(ctx context.Context, userID string) (*model.Profile, *serviceerror.ServiceError)
	RestoreUser(ctx context.Context, userID string) (*model.Profile, *serviceerror.ServiceError)
	ResendInvite(ctx context.Context, userID string) *serviceerror.ServiceError
	DeleteUser(ctx context.Context, userID string) *serviceerror.ServiceError
}

type userService struct {
	store    UserStore
	tx       dbmodel.Transactioner
	gate     permission.Gate
	mailer   mailer.Client
	locker   cache.Locker
	recorder *metrics.Recorder
	now      utils.Clock
	logger   *log.Logger
}

// NewUserService creates a new user service. A nil locker disables invite serialization.
func NewUserService(store UserStore, tx dbmodel.Transactioner, gate permission.Gate, mail mailer.Client,
	locker cache.Locker, recorder *metrics.Recorder, now utils.Clock) UserService {
	if now == nil {
		now = utils.SystemClock
	}
	if locker == nil {
		locker = cache.NoopCache{}
	}
	return &userService{
		store:    store,
		tx:       tx,
		gate:     gate,
		mailer:   mail,
		locker:   locker,
		recorder: recorder,
		now:      now,
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "UserService")),
	}
}

// InviteUser creates the identity through the auth service and then the profile.
// The two steps are not atomic; a failed insert leaves an orphaned identity
// that is logged for cleanup.
func (s *userService) InviteUser(ctx context.Context, req model.InviteRequest) (*model.Profile, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx, permission.RoleAdmin)
	if svcErr != nil {
		return nil, svcErr
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.TrimSpace(req.Role)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	role := permission.Role(req.Role)
	tenantID, svcErr := tenantForRole(role, req.TenantID, "")
	if svcErr != nil {
		return nil, svcErr
	}

	release, err := s.locker.Obtain(ctx, "invite:"+req.Email, inviteLockTTL)
	if errors.Is(err, cache.ErrLockNotObtained) {
		return nil, serviceerror.CustomServiceError(serviceerror.ConflictError,
			"An invitation for this email is already in progress")
	}
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.InternalServerError,
			fmt.Sprintf("failed to obtain invite lock: %v", err))
	}
	defer release()

	existing, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to check email: %v", err))
	}
	if existing != nil {
		s.recorder.Invitation("duplicate")
		return nil, serviceerror.CustomServiceError(serviceerror.ConflictError, "A user with this email already exists")
	}

	identityID, err := s.mailer.InviteUser(ctx, req.Email)
	if err != nil {
		s.recorder.Invitation("failed")
		return nil, serviceerror.CustomServiceError(serviceerror.ExternalServiceError,
			fmt.Sprintf("failed to send invitation: %v", err))
	}

	now := s.now()
	profile := &model.Profile{
		ID:        utils.GenerateUUID(),
		UserID:    identityID,
		Email:     req.Email,
		Role:      role,
		TenantID:  tenantID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.Create(tx, profile)
		},
	})
	if err != nil {
		s.recorder.Invitation("orphaned")
		s.logger.WithContext(ctx).Error("Invited identity has no profile",
			log.String("identity_id", identityID), log.String("email", req.Email), log.Error(err))
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError,
			fmt.Sprintf("invitation sent but the profile could not be created: %v", err))
	}

	s.recorder.Invitation("invited")
	s.logger.WithContext(ctx).Info("User invited",
		log.String("user_id", identityID), log.String("role", req.Role), log.String("invited_by", caller.UserID))
	return profile, nil
}

// ListUsers returns every profile for admins and the own tenant for managers.
func (s *userService) ListUsers(ctx context.Context) ([]model.Profile, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx, permission.RoleAdmin, permission.RoleManager)
	if svcErr != nil {
		return nil, svcErr
	}

	tenantID := ""
	if !caller.IsAdmin() {
		if caller.TenantID == "" {
			return []model.Profile{}, nil
		}
		tenantID = caller.TenantID
	}

	profiles, err := s.store.List(ctx, tenantID)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to list users: %v", err))
	}
	return profiles, nil
}

func (s *userService) UpdateRole(ctx context.Context, userID string, req model.UpdateRoleRequest) (*model.Profile, *serviceerror.ServiceError) {
	target, svcErr := s.adminActionOn(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	req.Role = strings.TrimSpace(req.Role)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	role := permission.Role(req.Role)
	tenantID, svcErr := tenantForRole(role, req.TenantID, target.Tenant())
	if svcErr != nil {
		return nil, svcErr
	}

	now := s.now()
	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.UpdateRole(tx, target.UserID, role, tenantID, now)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to update role: %v", err))
	}

	s.logger.WithContext(ctx).Info("User role updated",
		log.String("user_id", target.UserID), log.String("from", string(target.Role)), log.String("to", req.Role))
	target.Role = role
	target.TenantID = tenantID
	target.UpdatedAt = now
	return target, nil
}

func (s *userService) UpdateTenant(ctx context.Context, userID string, req model.UpdateTenantRequest) (*model.Profile, *serviceerror.ServiceError) {
	target, svcErr := s.adminActionOn(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}
	if target.Role == permission.RoleAdmin {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Admins cannot be assigned to a tenant")
	}

	req.TenantID = strings.TrimSpace(req.TenantID)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
	}
	tenantID := req.TenantID

	now := s.now()
	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.UpdateTenant(tx, target.UserID, &tenantID, now)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to update tenant: %v", err))
	}

	target.TenantID = &tenantID
	target.UpdatedAt = now
	return target, nil
}

func (s *userService) RevokeUser(ctx context.Context, userID string) (*model.Profile, *serviceerror.ServiceError) {
	return s.setRevoked(ctx, userID, true)
}

func (s *userService) RestoreUser(ctx context.Context, userID string) (*model.Profile, *serviceerror.ServiceError) {
	return s.setRevoked(ctx, userID, false)
}

// setRevoked bans the identity at the auth service first so a failed update never
// leaves a revoked profile that can still sign in.
func (s *userService) setRevoked(ctx context.Context, userID string, revoked bool) (*model.Profile, *serviceerror.ServiceError) {
	target, svcErr := s.adminActionOn(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	if err := s.mailer.SetBanned(ctx, target.UserID, revoked); err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ExternalServiceError,
			fmt.Sprintf("failed to update sign-in access: %v", err))
	}

	now := s.now()
	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.SetRevoked(tx, target.UserID, revoked, now)
		},
	})
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to update user: %v", err))
	}

	s.logger.WithContext(ctx).Info("User access changed",
		log.String("user_id", target.UserID), log.Bool("revoked", revoked))
	target.Revoked = revoked
	target.UpdatedAt = now
	return target, nil
}

func (s *userService) ResendInvite(ctx context.Context, userID string) *serviceerror.ServiceError {
	if _, svcErr := s.gate.Require(ctx, permission.RoleAdmin); svcErr != nil {
		return svcErr
	}
	target, svcErr := s.load(ctx, userID)
	if svcErr != nil {
		return svcErr
	}
	if target.Revoked {
		return serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "Cannot send an invitation to a revoked user")
	}

	if err := s.mailer.SendMagicLink(ctx, target.Email); err != nil {
		s.recorder.Invitation("failed")
		return serviceerror.CustomServiceError(serviceerror.ExternalServiceError,
			fmt.Sprintf("failed to resend invitation: %v", err))
	}
	s.recorder.Invitation("resent")
	return nil
}

// DeleteUser removes the profile and then the identity. A failed identity
// delete is only logged since the user can no longer pass the permission gate.
func (s *userService) DeleteUser(ctx context.Context, userID string) *serviceerror.ServiceError {
	target, svcErr := s.adminActionOn(ctx, userID)
	if svcErr != nil {
		return svcErr
	}

	err := s.tx.ExecuteTransaction(ctx, []func(tx dbmodel.TxInterface) error{
		func(tx dbmodel.TxInterface) error {
			return s.store.Delete(tx, target.UserID)
		},
	})
	if err != nil {
		return serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to delete user: %v", err))
	}

	if err := s.mailer.DeleteIdentity(ctx, target.UserID); err != nil {
		s.logger.WithContext(ctx).Warn("Profile deleted but identity remains",
			log.String("identity_id", target.UserID), log.Error(err))
	}

	s.logger.WithContext(ctx).Info("User deleted", log.String("user_id", target.UserID))
	return nil
}

// adminActionOn checks the caller is an admin acting on someone else and loads the target.
func (s *userService) adminActionOn(ctx context.Context, userID string) (*model.Profile, *serviceerror.ServiceError) {
	caller, svcErr := s.gate.Require(ctx, permission.RoleAdmin)
	if svcErr != nil {
		return nil, svcErr
	}
	if caller.UserID == userID {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError,
			"You cannot perform this action on your own account")
	}
	return s.load(ctx, userID)
}

func (s *userService) load(ctx context.Context, userID string) (*model.Profile, *serviceerror.ServiceError) {
	if strings.TrimSpace(userID) == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.InvalidRequestError, "user id is required")
	}
	profile, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, serviceerror.CustomServiceError(serviceerror.DatabaseError, fmt.Sprintf("failed to get user: %v", err))
	}
	if profile == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ResourceNotFoundError, "User not found")
	}
	return profile, nil
}

// tenantForRole clears the tenant of admins and requires one for every other role.
// fallback is used when requested is empty.
func tenantForRole(role permission.Role, requested, fallback string) (*string, *serviceerror.ServiceError) {
	if role == permission.RoleAdmin {
		return nil, nil
	}
	tenantID := strings.TrimSpace(requested)
	if tenantID == "" {
		tenantID = fallback
	}
	if tenantID == "" {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError,
			"tenant_id is required for non-admin roles")
	}
	return &tenantID, nil
}
