package model

import (
	"context"
	"time"
)

// TenantStore defines persistence operations for tenants.
type TenantStore interface {
	Create(ctx context.Context, tenant Tenant) (Tenant, error)
	GetByID(ctx context.Context, id int64) (Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	Update(ctx context.Context, tenant Tenant) (Tenant, error)
	Delete(ctx context.Context, id int64) error
}

// Tenant is an organisation users may belong to.
type Tenant struct {
	ID        int64
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
