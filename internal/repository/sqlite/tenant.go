package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/auth-service/internal/model"
)

var _ model.TenantStore = (*TenantRepository)(nil)

const tenantColumns = `id, name, address, created_at, updated_at`

type TenantRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewTenantRepository(db *sql.DB) *TenantRepository {
	return &TenantRepository{db: db, now: time.Now}
}

func (r *TenantRepository) Create(ctx context.Context, tenant model.Tenant) (model.Tenant, error) {
	query := `INSERT INTO tenants (name, address, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING ` + tenantColumns

	now := toUnix(r.now())
	saved, err := scanTenant(r.db.QueryRowContext(ctx, query, tenant.Name, tenant.Address, now, now))
	if err != nil {
		return model.Tenant{}, fmt.Errorf("failed to create tenant: %w", err)
	}
	return saved, nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id int64) (model.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = ?`

	tenant, err := scanTenant(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Tenant{}, model.ErrNotFound
		}
		return model.Tenant{}, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

func (r *TenantRepository) List(ctx context.Context) ([]model.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
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
	query := `UPDATE tenants SET name = ?, address = ?, updated_at = ? WHERE id = ? RETURNING ` + tenantColumns

	saved, err := scanTenant(r.db.QueryRowContext(ctx, query, tenant.Name, tenant.Address, toUnix(r.now()), tenant.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Tenant{}, model.ErrNotFound
		}
		return model.Tenant{}, fmt.Errorf("failed to update tenant: %w", err)
	}
	return saved, nil
}

func (r *TenantRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM tenants WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanTenant(row rowScanner) (model.Tenant, error) {
	var (
		t                model.Tenant
		created, updated int64
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Address, &created, &updated); err != nil {
		return model.Tenant{}, err
	}
	t.CreatedAt = fromUnix(created)
	t.UpdatedAt = fromUnix(updated)
	return t, nil
}
