// Package repository selects the storage backend the service runs on.
package repository

import (
	"context"
	"fmt"

	"github.com/dtroode/auth-service/internal/model"
	"github.com/dtroode/auth-service/internal/repository/postgres"
	"github.com/dtroode/auth-service/internal/repository/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Stores bundles the stores of one backend. Close releases the backend.
type Stores struct {
	Users         model.UserStore
	Tenants       model.TenantStore
	RefreshTokens model.RefreshTokenStore
	Pinger        model.Pinger
	Close         func() error
}

// Open connects to the backend named by driver and applies migrations.
func Open(ctx context.Context, driver, dsn string) (*Stores, error) {
	switch driver {
	case DriverPostgres:
		conn, err := postgres.NewConection(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Users:         postgres.NewUserRepository(conn),
			Tenants:       postgres.NewTenantRepository(conn),
			RefreshTokens: postgres.NewRefreshTokenRepository(conn),
			Pinger:        conn,
			Close:         conn.Close,
		}, nil
	case DriverSQLite:
		db, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Users:         sqlite.NewUserRepository(db),
			Tenants:       sqlite.NewTenantRepository(db),
			RefreshTokens: sqlite.NewRefreshTokenRepository(db),
			Pinger:        pingFunc(db.PingContext),
			Close:         db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
