// Package postgres implements the stores on PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dtroode/auth-service/database"
)

const uniqueViolation = "23505"

const (
	maxConnLifetime   = time.Hour
	healthCheckPeriod = 30 * time.Second
)

var errNoPool = errors.New("postgres: connection pool is not initialized")

// Connection is the shared pool of all postgres stores.
type Connection struct {
	*pgxpool.Pool
}

// NewConection migrates the schema behind dsn and opens a pool to it.
func NewConection(ctx context.Context, dsn string) (*Connection, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	conf.MaxConnLifetime = maxConnLifetime
	conf.HealthCheckPeriod = healthCheckPeriod

	if err := database.Migrate(ctx, dsn); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	return &Connection{Pool: pool}, nil
}

func (c *Connection) Close() error {
	if c.Pool != nil {
		c.Pool.Close()
	}
	return nil
}

// Ping backs the readiness checks.
func (c *Connection) Ping(ctx context.Context) error {
	if c.Pool == nil {
		return errNoPool
	}
	return c.Pool.Ping(ctx)
}

// InTx runs fn in a transaction and commits when fn returns nil.
func (c *Connection) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if c.Pool == nil {
		return errNoPool
	}

	tx, err := c.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
