package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/auth-service/internal/model"
)

var _ model.TenantStore = (*TenantRepository)(nil)

const tenantColumns = `id, name, address, created_at, updated_at`

type TenantRepository struct {
	db *Connection
}

func NewTenantRepository(db *Connection) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(ctx context.Context, tenant model.Tenant) (model.Tenant, error) {
	query := `INSERT INTO tenants (name, address) VALUES ($1, $2) RETURNING ` + tenantColumns

	saved, err := scanTenant(r.db.QueryRow(ctx, query, tenant.Name, tenant.Address))
	if err != nil {
		return model.Tenant{}, fmt.Errorf("failed to create tenant: %w", err)
	}
	return saved, nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id int64) (model.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`

	tenant, err := scanTenant(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Tenant{}, model.ErrNotFound
		}
		return model.Tenant{}, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

func (r *TenantRepository) List(ctx context.Context) ([]model.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]model.Tenant, 0)
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

func (r *TenantRepository) Update(ctx context.Context, tenant model.Tenant) (model.Tenant, error) {
	query := `UPDATE tenants SET name = $2, address = $3, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + tenantColumns

	saved, err := scanTenant(r.db.QueryRow(ctx, query, tenant.ID, tenant.Name, tenant.Address))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Tenant{}, model.ErrNotFound
		}
		return model.Tenant{}, fmt.Errorf("failed to update tenant: %w", err)
	}
	return saved, nil
}

func (r *TenantRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM tenants WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanTenant(row pgx.Row) (model.Tenant, error) {
	var t model.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Address, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
