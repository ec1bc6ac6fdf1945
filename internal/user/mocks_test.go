package user

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/complyhub/compliance-management-api/internal/permission"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/user/model"
)

// MockUserStore is a mock implementation of UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetCaller(ctx context.Context, userID string) (*permission.Caller, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permission.Caller), args.Error(1)
}

func (m *MockUserStore) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context, tenantID string) ([]model.Profile, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Profile), args.Error(1)
}

func (m *MockUserStore) Create(tx dbmodel.TxInterface, p *model.Profile) error {
	return m.Called(tx, p).Error(0)
}

func (m *MockUserStore) UpdateRole(tx dbmodel.TxInterface, userID string, role permission.Role, tenantID *string, updatedAt time.Time) error {
	return m.Called(tx, userID, role, tenantID, updatedAt).Error(0)
}

func (m *MockUserStore) UpdateTenant(tx dbmodel.TxInterface, userID string, tenantID *string, updatedAt time.Time) error {
	return m.Called(tx, userID, tenantID, updatedAt).Error(0)
}

func (m *MockUserStore) SetRevoked(tx dbmodel.TxInterface, userID string, revoked bool, updatedAt time.Time) error {
	return m.Called(tx, userID, revoked, updatedAt).Error(0)
}

func (m *MockUserStore) Delete(tx dbmodel.TxInterface, userID string) error {
	return m.Called(tx, userID).Error(0)
}

// MockMailer is a mock implementation of mailer.Client
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) InviteUser(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockMailer) SendMagicLink(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockMailer) SetBanned(ctx context.Context, identityID string, banned bool) error {
	return m.Called(ctx, identityID, banned).Error(0)
}

func (m *MockMailer) DeleteIdentity(ctx context.Context, identityID string) error {
	return m.Called(ctx, identityID).Error(0)
}

// MockLocker is a mock implementation of cache.Locker
type MockLocker struct {
	mock.Mock
	released int
}

func (m *MockLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	args := m.Called(ctx, key, ttl)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func() { m.released++ }, nil
}
