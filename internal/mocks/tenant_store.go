package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/auth-service/internal/model"
)

// TenantStore is a mock implementation of model.TenantStore.
type TenantStore struct {
	mock.Mock
}

func (m *TenantStore) Create(ctx context.Context, tenant model.Tenant) (model.Tenant, error) {
	args := m.Called(ctx, tenant)
	return args.Get(0).(model.Tenant), args.Error(1)
}

func (m *TenantStore) GetByID(ctx context.Context, id int64) (model.Tenant, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Tenant), args.Error(1)
}

func (m *TenantStore) List(ctx context.Context) ([]model.Tenant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Tenant), args.Error(1)
}

func (m *TenantStore) Update(ctx context.Context, tenant model.Tenant) (model.Tenant, error) {
	args := m.Called(ctx, tenant)
	return args.Get(0).(model.Tenant), args.Error(1)
}

func (m *TenantStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
