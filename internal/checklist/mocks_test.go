package checklist

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/complyhub/compliance-management-api/internal/checklist/model"
	compliancemodel "github.com/complyhub/compliance-management-api/internal/compliance/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
)

type MockChecklistStore struct {
	mock.Mock
}

func (m *MockChecklistStore) GetByID(ctx context.Context, id string) (*model.Checklist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Checklist), args.Error(1)
}

func (m *MockChecklistStore) List(ctx context.Context, complianceID string) ([]model.Checklist, error) {
	args := m.Called(ctx, complianceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Checklist), args.Error(1)
}

func (m *MockChecklistStore) ListResponses(ctx context.Context, checklistID string) ([]model.ChecklistResponse, error) {
	args := m.Called(ctx, checklistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChecklistResponse), args.Error(1)
}

func (m *MockChecklistStore) Create(tx dbmodel.TxInterface, c *model.Checklist) error {
	return m.Called(tx, c).Error(0)
}

func (m *MockChecklistStore) UpdateSchema(tx dbmodel.TxInterface, id string, checklistSchema []byte, updatedAt time.Time) error {
	return m.Called(tx, id, checklistSchema, updatedAt).Error(0)
}

func (m *MockChecklistStore) UpdateStatus(tx dbmodel.TxInterface, id string, status lifecycle.Status, updatedAt time.Time) error {
	return m.Called(tx, id, status, updatedAt).Error(0)
}

func (m *MockChecklistStore) Delete(tx dbmodel.TxInterface, id string) error {
	return m.Called(tx, id).Error(0)
}

func (m *MockChecklistStore) CreateResponse(tx dbmodel.TxInterface, r *model.ChecklistResponse) error {
	return m.Called(tx, r).Error(0)
}

type MockFrameworkStore struct {
	mock.Mock
}

func (m *MockFrameworkStore) GetByID(ctx context.Context, id string) (*compliancemodel.Compliance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliancemodel.Compliance), args.Error(1)
}

func (m *MockFrameworkStore) GetByName(ctx context.Context, name string) (*compliancemodel.Compliance, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compliancemodel.Compliance), args.Error(1)
}

func (m *MockFrameworkStore) List(ctx context.Context, status lifecycle.Status) ([]compliancemodel.Compliance, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]compliancemodel.Compliance), args.Error(1)
}

func (m *MockFrameworkStore) HasResponses(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockFrameworkStore) Create(tx dbmodel.TxInterface, c *compliancemodel.Compliance) error {
	return m.Called(tx, c).Error(0)
}

func (m *MockFrameworkStore) Update(tx dbmodel.TxInterface, c *compliancemodel.Compliance) error {
	return m.Called(tx, c).Error(0)
}

func (m *MockFrameworkStore) UpdateStatus(tx dbmodel.TxInterface, id string, status lifecycle.Status, updatedAt time.Time) error {
	return m.Called(tx, id, status, updatedAt).Error(0)
}

func (m *MockFrameworkStore) Delete(tx dbmodel.TxInterface, id string) error {
	return m.Called(tx, id).Error(0)
}
