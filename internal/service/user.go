package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/auth-service/internal/apierrors"
	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
)

// CreateUserParams is the input of an admin-created account.
type CreateUserParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      model.Role
	TenantID  *int64
}

// UpdateUserParams lists the fields an admin may change.
type UpdateUserParams struct {
	FirstName string
	LastName  string
	Role      model.Role
	TenantID  *int64
}

// User manages accounts on behalf of administrators.
type User struct {
	userStore   model.UserStore
	credentials model.CredentialVerifier
	logger      *logger.Logger
}

func NewUser(userStore model.UserStore, credentials model.CredentialVerifier, logger *logger.Logger) *User {
	return &User{userStore: userStore, credentials: credentials, logger: logger}
}

func (u *User) Create(ctx context.Context, params CreateUserParams) (model.User, error) {
	user, err := createUser(ctx, u.userStore, u.credentials, model.User{
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
		Role:      params.Role,
		TenantID:  params.TenantID,
	}, params.Password)
	if err != nil {
		return model.User{}, err
	}

	u.logger.Info("User service: user created",
		"user_id", user.ID,
		"role", user.Role.String())

	return user, nil
}

func (u *User) List(ctx context.Context) ([]model.User, error) {
	users, err := u.userStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (u *User) Get(ctx context.Context, id int64) (model.User, error) {
	user, err := u.userStore.GetByID(ctx, id)
	if err != nil {
		return model.User{}, userError(err, "failed to get user")
	}
	return user, nil
}

func (u *User) Update(ctx context.Context, id int64, params UpdateUserParams) (model.User, error) {
	user, err := u.userStore.Update(ctx, model.User{
		ID:        id,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Role:      params.Role,
		TenantID:  params.TenantID,
	})
	if err != nil {
		return model.User{}, userError(err, "failed to update user")
	}

	u.logger.Info("User service: user updated",
		"user_id", id)

	return user, nil
}

// Delete removes a user. Their refresh token records go with them.
func (u *User) Delete(ctx context.Context, id int64) error {
	if err := u.userStore.Delete(ctx, id); err != nil {
		return userError(err, "failed to delete user")
	}

	u.logger.Info("User service: user deleted",
		"user_id", id)

	return nil
}

func userError(err error, msg string) error {
	if errors.Is(err, model.ErrNotFound) {
		return apierrors.NewErrUserNotFound()
	}
	return fmt.Errorf("%s: %w", msg, err)
}
