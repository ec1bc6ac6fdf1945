package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	auditmodel "github.com/complyhub/compliance-management-api/internal/audit/model"
	compliancemodel "github.com/complyhub/compliance-management-api/internal/compliance/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	usermodel "github.com/complyhub/compliance-management-api/internal/user/model"
)

type MockAuditReader struct {
	mock.Mock
}

func (m *MockAuditReader) List(ctx context.Context, scope auditmodel.Scope) ([]auditmodel.Audit, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auditmodel.Audit), args.Error(1)
}

type MockFrameworkReader struct {
	mock.Mock
}

func (m *MockFrameworkReader) List(ctx context.Context, status lifecycle.Status) ([]compliancemodel.Compliance, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]compliancemodel.Compliance), args.Error(1)
}

type MockProfileReader struct {
	mock.Mock
}

func (m *MockProfileReader) List(ctx context.Context, tenantID string) ([]usermodel.Profile, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]usermodel.Profile), args.Error(1)
}

// memoryCache is a JSON cache kept in a map.
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
	sets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) GetObject(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) SetObject(_ context.Context, key string, obj interface{}, _ time.Duration) error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = raw
	c.sets++
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}
