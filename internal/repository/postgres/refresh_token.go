package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/auth-service/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db *Connection
}

func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Save(ctx context.Context, ownerID int64, expiresAt time.Time) (model.RefreshTokenRecord, error) {
	const query = `
        INSERT INTO refresh_tokens (user_id, expires_at)
        VALUES ($1, $2)
        RETURNING id, user_id, expires_at, created_at
    `

	var rt model.RefreshTokenRecord
	err := r.db.QueryRow(ctx, query, ownerID, expiresAt).Scan(&rt.ID, &rt.OwnerID, &rt.ExpiresAt, &rt.CreatedAt)
	if err != nil {
		return model.RefreshTokenRecord{}, fmt.Errorf("failed to create refresh token: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) FindOne(ctx context.Context, id, ownerID int64) (model.RefreshTokenRecord, error) {
	const query = `
        SELECT id, user_id, expires_at, created_at
        FROM refresh_tokens WHERE id = $1 AND user_id = $2
    `

	var rt model.RefreshTokenRecord
	err := r.db.QueryRow(ctx, query, id, ownerID).Scan(&rt.ID, &rt.OwnerID, &rt.ExpiresAt, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefreshTokenRecord{}, model.ErrNotFound
		}
		return model.RefreshTokenRecord{}, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM refresh_tokens WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID, ownerID int64, now, expiresAt time.Time) (model.RefreshTokenRecord, error) {
	const deleteQuery = `
        DELETE FROM refresh_tokens
        WHERE id = $1 AND user_id = $2 AND expires_at > $3
    `
	const insertQuery = `
        INSERT INTO refresh_tokens (user_id, expires_at)
        VALUES ($1, $2)
        RETURNING id, user_id, expires_at, created_at
    `

	var rt model.RefreshTokenRecord
	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, deleteQuery, oldID, ownerID, now)
		if err != nil {
			return fmt.Errorf("failed to delete rotated refresh token: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrNotFound
		}

		if err := tx.QueryRow(ctx, insertQuery, ownerID, expiresAt).Scan(&rt.ID, &rt.OwnerID, &rt.ExpiresAt, &rt.CreatedAt); err != nil {
			return fmt.Errorf("failed to create rotated refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.RefreshTokenRecord{}, err
	}
	return rt, nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at <= $1`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
