package form

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	auditmodel "github.com/complyhub/compliance-management-api/internal/audit/model"
	compliancemodel "github.com/complyhub/compliance-management-api/internal/compliance/model"
	"github.com/complyhub/compliance-management-api/internal/form/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
)

type MockFormStore struct {
	mock.Mock
}

func (m *MockFormStore) GetByID(ctx context.Context, id string) (*model.Form, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Form), args.Error(1)
}

func (m *MockFormStore) List(ctx context.Context, complianceID string) ([]model.Form, error) {
	args := m.Called(ctx, complianceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Form), args.Error(1)
}

func (m *MockFormStore) ListResponses(ctx context.Context, formID string) ([]model.FormResponse, error) {
	args := m.Called(ctx, formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FormResponse), args.Error(1)
}

func (m *MockFormStore) Create(tx dbmodel.TxInterface, f *model.Form) error {
	return m.Called(tx, f).Error(0)
}

func (m *MockFormStore) UpdateSchema(tx dbmodel.TxInterface, id string, formSchema []byte, updatedAt time.Time) error {
	return m.Called(tx, id, formSchema, updatedAt).Error(0)
}

func (m *MockFormStore) UpdateStatus(tx dbmodel.TxInterface, id string, status lifecycle.Status, updatedAt time.Time) error {
	return m.Called(tx, id, status, updatedAt).Error(0)
}

func (m *MockFormStore) Delete(tx dbmodel.TxInterface, id string) error {
	return m.Called(tx, id).Error(0)
}

func (m *MockFormStore) CreateResponse(tx dbmodel.TxInterface, r *model.FormResponse) error {
	return m.Called(tx, r).Error(0)
}

// MockFrameworkStore covers the framework lookups forms depend on.
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

type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) GetByID(ctx context.Context, id string) (*auditmodel.Audit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditmodel.Audit), args.Error(1)
}

func (m *MockAuditStore) List(ctx context.Context, scope auditmodel.Scope) ([]auditmodel.Audit, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auditmodel.Audit), args.Error(1)
}

func (m *MockAuditStore) Create(tx dbmodel.TxInterface, a *auditmodel.Audit) error {
	return m.Called(tx, a).Error(0)
}

func (m *MockAuditStore) UpdateVerification(tx dbmodel.TxInterface, a *auditmodel.Audit) error {
	return m.Called(tx, a).Error(0)
}
