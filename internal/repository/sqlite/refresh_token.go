package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/auth-service/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRefreshTokenRepository(db *sql.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db, now: time.Now}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *RefreshTokenRepository) insert(ctx context.Context, q queryRower, ownerID int64, expiresAt time.Time) (model.RefreshTokenRecord, error) {
	const query = `
        INSERT INTO refresh_tokens (user_id, expires_at, created_at)
        VALUES (?, ?, ?)
        RETURNING id, user_id, expires_at, created_at
    `

	var (
		rt                   model.RefreshTokenRecord
		expires, createdUnix int64
	)
	err := q.QueryRowContext(ctx, query, ownerID, toUnix(expiresAt), toUnix(r.now())).
		Scan(&rt.ID, &rt.OwnerID, &expires, &createdUnix)
	if err != nil {
		return model.RefreshTokenRecord{}, err
	}
	rt.ExpiresAt = fromUnix(expires)
	rt.CreatedAt = fromUnix(createdUnix)
	return rt, nil
}

func (r *RefreshTokenRepository) Save(ctx context.Context, ownerID int64, expiresAt time.Time) (model.RefreshTokenRecord, error) {
	rt, err := r.insert(ctx, r.db, ownerID, expiresAt)
	if err != nil {
		return model.RefreshTokenRecord{}, fmt.Errorf("failed to create refresh token: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) FindOne(ctx context.Context, id, ownerID int64) (model.RefreshTokenRecord, error) {
	const query = `
        SELECT id, user_id, expires_at, created_at
        FROM refresh_tokens WHERE id = ? AND user_id = ?
    `

	var (
		rt                   model.RefreshTokenRecord
		expires, createdUnix int64
	)
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(&rt.ID, &rt.OwnerID, &expires, &createdUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RefreshTokenRecord{}, model.ErrNotFound
		}
		return model.RefreshTokenRecord{}, fmt.Errorf("failed to get refresh token: %w", err)
	}
	rt.ExpiresAt = fromUnix(expires)
	rt.CreatedAt = fromUnix(createdUnix)
	return rt, nil
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM refresh_tokens WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID, ownerID int64, now, expiresAt time.Time) (model.RefreshTokenRecord, error) {
	const deleteQuery = `DELETE FROM refresh_tokens WHERE id = ? AND user_id = ? AND expires_at > ?`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.RefreshTokenRecord{}, fmt.Errorf("failed to begin rotation: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, deleteQuery, oldID, ownerID, toUnix(now))
	if err != nil {
		return model.RefreshTokenRecord{}, fmt.Errorf("failed to delete rotated refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.RefreshTokenRecord{}, fmt.Errorf("failed to delete rotated refresh token: %w", err)
	}
	if n == 0 {
		return model.RefreshTokenRecord{}, model.ErrNotFound
	}

	rt, err := r.insert(ctx, tx, ownerID, expiresAt)
	if err != nil {
		return model.RefreshTokenRecord{}, fmt.Errorf("failed to create rotated refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.RefreshTokenRecord{}, fmt.Errorf("failed to commit rotation: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at <= ?`

	res, err := r.db.ExecContext(ctx, query, toUnix(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return n, nil
}
