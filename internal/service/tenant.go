package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/auth-service/internal/apierrors"
	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
)

// TenantParams is the writable part of a tenant.
type TenantParams struct {
	Name    string
	Address string
}

type Tenant struct {
	tenantStore model.TenantStore
	logger      *logger.Logger
}

func NewTenant(tenantStore model.TenantStore, logger *logger.Logger) *Tenant {
	return &Tenant{tenantStore: tenantStore, logger: logger}
}

func (t *Tenant) Create(ctx context.Context, params TenantParams) (model.Tenant, error) {
	tenant, err := t.tenantStore.Create(ctx, model.Tenant{Name: params.Name, Address: params.Address})
	if err != nil {
		return model.Tenant{}, fmt.Errorf("failed to create tenant: %w", err)
	}

	t.logger.Info("Tenant service: tenant created",
		"tenant_id", tenant.ID)

	return tenant, nil
}

func (t *Tenant) List(ctx context.Context) ([]model.Tenant, error) {
	tenants, err := t.tenantStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

func (t *Tenant) Get(ctx context.Context, id int64) (model.Tenant, error) {
	tenant, err := t.tenantStore.GetByID(ctx, id)
	if err != nil {
		return model.Tenant{}, tenantError(err, "failed to get tenant")
	}
	return tenant, nil
}

func (t *Tenant) Update(ctx context.Context, id int64, params TenantParams) (model.Tenant, error) {
	tenant, err := t.tenantStore.Update(ctx, model.Tenant{ID: id, Name: params.Name, Address: params.Address})
	if err != nil {
		return model.Tenant{}, tenantError(err, "failed to update tenant")
	}

	t.logger.Info("Tenant service: tenant updated",
		"tenant_id", id)

	return tenant, nil
}

func (t *Tenant) Delete(ctx context.Context, id int64) error {
	if err := t.tenantStore.Delete(ctx, id); err != nil {
		return tenantError(err, "failed to delete tenant")
	}

	t.logger.Info("Tenant service: tenant deleted",
		"tenant_id", id)

	return nil
}

func tenantError(err error, msg string) error {
	if errors.Is(err, model.ErrNotFound) {
		return apierrors.NewErrTenantNotFound()
	}
	return fmt.Errorf("%s: %w", msg, err)
}
