package model

import (
	"context"
	"time"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	// GetByEmail returns the user together with the password hash.
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id int64) error
}

// User represents a stored user with authentication material.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	TenantID     *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal returns the identity tokens are minted for.
func (u User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role, TenantID: u.TenantID}
}
