package compliance

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/complyhub/compliance-management-api/internal/compliance/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
)

// MockComplianceStore is a mock implementation of ComplianceStore
type MockComplianceStore struct {
	mock.Mock
}

func (m *MockComplianceStore) GetByID(ctx context.Context, id string) (*model.Compliance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Compliance), args.Error(1)
}

func (m *MockComplianceStore) GetByName(ctx context.Context, name string) (*model.Compliance, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Compliance), args.Error(1)
}

func (m *MockComplianceStore) List(ctx context.Context, status lifecycle.Status) ([]model.Compliance, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Compliance), args.Error(1)
}

func (m *MockComplianceStore) HasResponses(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockComplianceStore) Create(tx dbmodel.TxInterface, c *model.Compliance) error {
	return m.Called(tx, c).Error(0)
}

func (m *MockComplianceStore) Update(tx dbmodel.TxInterface, c *model.Compliance) error {
	return m.Called(tx, c).Error(0)
}

func (m *MockComplianceStore) UpdateStatus(tx dbmodel.TxInterface, id string, status lifecycle.Status, updatedAt time.Time) error {
	return m.Called(tx, id, status, updatedAt).Error(0)
}

func (m *MockComplianceStore) Delete(tx dbmodel.TxInterface, id string) error {
	return m.Called(tx, id).Error(0)
}
