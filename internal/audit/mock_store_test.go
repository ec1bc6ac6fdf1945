package audit

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/complyhub/compliance-management-api/internal/audit/model"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
)

type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) GetByID(ctx context.Context, id string) (*model.Audit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Audit), args.Error(1)
}

func (m *MockAuditStore) List(ctx context.Context, scope model.Scope) ([]model.Audit, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Audit), args.Error(1)
}

func (m *MockAuditStore) Create(tx dbmodel.TxInterface, a *model.Audit) error {
	return m.Called(tx, a).Error(0)
}

func (m *MockAuditStore) UpdateVerification(tx dbmodel.TxInterface, a *model.Audit) error {
	return m.Called(tx, a).Error(0)
}
