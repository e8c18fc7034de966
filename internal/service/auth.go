package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/auth-service/internal/apierrors"
	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
)

// RegisterParams is the input of a self-service registration.
type RegisterParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Auth orchestrates register, login, refresh and logout.
type Auth struct {
	userStore    model.UserStore
	credentials  model.CredentialVerifier
	tokenService *TokenService
	logger       *logger.Logger
}

func NewAuth(
	userStore model.UserStore,
	credentials model.CredentialVerifier,
	tokenService *TokenService,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		credentials:  credentials,
		tokenService: tokenService,
		logger:       logger,
	}
}

// Register creates a customer account and issues its first token pair.
func (a *Auth) Register(ctx context.Context, params RegisterParams) (model.User, model.TokenPair, error) {
	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email)

	user, err := createUser(ctx, a.userStore, a.credentials, model.User{
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
		Role:      model.RoleCustomer,
	}, params.Password)
	if err != nil {
		a.logger.Info("Auth service: registration failed",
			"email", params.Email,
			"error", err.Error())
		return model.User{}, model.TokenPair{}, err
	}

	pair, err := a.tokenService.IssuePair(ctx, user.Principal())
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", user.ID,
			"error", err.Error())
		return model.User{}, model.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"user_id", user.ID)

	return user, pair, nil
}

// Login checks credentials and issues a new token pair.
func (a *Auth) Login(ctx context.Context, email, password string) (model.User, model.TokenPair, error) {
	user, err := a.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.logger.Info("Auth service: login for unknown email",
				"email", email)
			return model.User{}, model.TokenPair{}, apierrors.NewErrInvalidCredentials()
		}
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, model.TokenPair{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.credentials.Verify(password, user.PasswordHash) {
		a.logger.Info("Auth service: password mismatch",
			"user_id", user.ID)
		return model.User{}, model.TokenPair{}, apierrors.NewErrInvalidCredentials()
	}

	pair, err := a.tokenService.IssuePair(ctx, user.Principal())
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", user.ID,
			"error", err.Error())
		return model.User{}, model.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return user, pair, nil
}

// Self returns the account of the authenticated principal.
func (a *Auth) Self(ctx context.Context, principal model.Principal) (model.User, error) {
	user, err := a.userStore.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apierrors.NewErrUserNotFound()
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// Refresh rotates the refresh token described by claims.
func (a *Auth) Refresh(ctx context.Context, claims model.RefreshTokenClaims) (model.TokenPair, error) {
	pair, err := a.tokenService.Rotate(ctx, claims)
	if err != nil {
		if errors.Is(err, model.ErrTokenRevoked) {
			return model.TokenPair{}, apierrors.NewErrInvalidAuthorizationToken()
		}
		a.logger.Error("Auth service: failed to rotate refresh token",
			"user_id", claims.PrincipalID,
			"record_id", claims.RecordID,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to rotate tokens: %w", err)
	}

	a.logger.Info("Auth service: refresh token rotated",
		"user_id", claims.PrincipalID,
		"old_record_id", claims.RecordID,
		"new_record_id", pair.RecordID)

	return pair, nil
}

// Logout revokes the refresh token described by claims.
func (a *Auth) Logout(ctx context.Context, claims model.RefreshTokenClaims) error {
	if err := a.tokenService.DeleteRefreshToken(ctx, claims.RecordID); err != nil {
		a.logger.Error("Auth service: failed to revoke refresh token",
			"user_id", claims.PrincipalID,
			"record_id", claims.RecordID,
			"error", err.Error())
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	a.logger.Info("Auth service: user logged out",
		"user_id", claims.PrincipalID,
		"record_id", claims.RecordID)

	return nil
}

// createUser hashes password and stores user, translating a duplicate email
// into a client error.
func createUser(ctx context.Context, store model.UserStore, credentials model.CredentialVerifier, user model.User, password string) (model.User, error) {
	_, err := store.GetByEmail(ctx, user.Email)
	switch {
	case err == nil:
		return model.User{}, apierrors.NewErrEmailIsTaken()
	case !errors.Is(err, model.ErrNotFound):
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := credentials.Hash(password)
	if err != nil {
		return model.User{}, err
	}
	user.PasswordHash = hash

	saved, err := store.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.User{}, apierrors.NewErrEmailIsTaken()
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}
