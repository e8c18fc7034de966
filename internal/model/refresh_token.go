package model

import (
	"context"
	"time"
)

// RefreshTokenStore persists refresh token records. A record's existence is
// what keeps a refresh token usable.
type RefreshTokenStore interface {
	Save(ctx context.Context, ownerID int64, expiresAt time.Time) (RefreshTokenRecord, error)
	FindOne(ctx context.Context, id, ownerID int64) (RefreshTokenRecord, error)
	Delete(ctx context.Context, id int64) error
	// Rotate deletes the unexpired record (oldID, ownerID) and saves a new one
	// in a single transaction. It returns ErrNotFound when nothing was deleted.
	Rotate(ctx context.Context, oldID, ownerID int64, now, expiresAt time.Time) (RefreshTokenRecord, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RefreshTokenRecord is the server-side backing of a refresh token.
type RefreshTokenRecord struct {
	ID        int64
	OwnerID   int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record is no longer usable at now.
func (r RefreshTokenRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
