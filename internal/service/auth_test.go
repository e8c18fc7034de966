package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/auth-service/internal/apierrors"
	servermocks "github.com/dtroode/auth-service/internal/mocks"
	"github.com/dtroode/auth-service/internal/model"
	"github.com/dtroode/auth-service/internal/testutil"
)

type authDeps struct {
	users   *servermocks.UserStore
	creds   *servermocks.CredentialVerifier
	manager *servermocks.TokenManager
	store   *servermocks.RefreshTokenStore
}

func newAuth() (*Auth, authDeps) {
	deps := authDeps{
		users:   &servermocks.UserStore{},
		creds:   &servermocks.CredentialVerifier{},
		manager: &servermocks.TokenManager{},
		store:   &servermocks.RefreshTokenStore{},
	}
	tokens := newTokenService(deps.manager, deps.store)
	return NewAuth(deps.users, deps.creds, tokens, testutil.MakeNoopLogger()), deps
}

func requireAPIError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	apiErr, ok := apierrors.From(err)
	require.True(t, ok, "expected api error, got %v", err)
	assert.Equal(t, status, apiErr.Status)
	assert.Equal(t, msg, apiErr.Entries[0].Msg)
}

func TestAuth_Register(t *testing.T) {
	ctx := context.Background()
	a, deps := newAuth()

	deps.users.On("GetByEmail", ctx, "a@b.com").Return(model.User{}, model.ErrNotFound).Once()
	deps.creds.On("Hash", "secret1").Return("hashed", nil).Once()
	deps.users.On("Create", ctx, model.User{
		Email:        "a@b.com",
		PasswordHash: "hashed",
		Role:         model.RoleCustomer,
	}).Return(model.User{ID: 1, Email: "a@b.com", PasswordHash: "hashed", Role: model.RoleCustomer}, nil).Once()
	deps.store.On("Save", ctx, int64(1), mock.Anything).Return(model.RefreshTokenRecord{ID: 10, OwnerID: 1}, nil).Once()
	principal := model.Principal{ID: 1, Role: model.RoleCustomer}
	deps.manager.On("GenerateAccessToken", principal).Return("access", nil).Once()
	deps.manager.On("GenerateRefreshToken", principal, int64(10)).Return("refresh", nil).Once()

	user, pair, err := a.Register(ctx, RegisterParams{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "access", pair.AccessToken)
	assert.Equal(t, "refresh", pair.RefreshToken)

	deps.users.AssertExpectations(t)
	deps.store.AssertExpectations(t)
}

func TestAuth_Register_EmailTaken(t *testing.T) {
	ctx := context.Background()
	a, deps := newAuth()

	deps.users.On("GetByEmail", ctx, "a@b.com").Return(model.User{ID: 1}, nil).Once()

	_, _, err := a.Register(ctx, RegisterParams{Email: "a@b.com", Password: "secret1"})
	requireAPIError(t, err, http.StatusBadRequest, "Email is already exists!")
	deps.creds.AssertNotCalled(t, "Hash", "secret1")
}

func TestAuth_Register_ConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	a, deps := newAuth()

	deps.users.On("GetByEmail", ctx, "a@b.com").Return(model.User{}, model.ErrNotFound).Once()
	deps.creds.On("Hash", "secret1").Return("hashed", nil).Once()
	deps.users.On("Create", ctx, mock.Anything).Return(model.User{}, model.ErrConflict).Once()

	_, _, err := a.Register(ctx, RegisterParams{Email: "a@b.com", Password: "secret1"})
	requireAPIError(t, err, http.StatusBadRequest, "Email is already exists!")
}

func TestAuth_Register_PersistFailureIssuesNothing(t *testing.T) {
	ctx := context.Background()
	a, deps := newAuth()

	deps.users.On("GetByEmail", ctx, "a@b.com").Return(model.User{}, model.ErrNotFound).Once()
	deps.creds.On("Hash", "secret1").Return("hashed", nil).Once()
	deps.users.On("Create", ctx, mock.Anything).Return(model.User{ID: 1, Role: model.RoleCustomer}, nil).Once()
	deps.store.On("Save", ctx, int64(1), mock.Anything).Return(model.RefreshTokenRecord{}, assert.AnError).Once()

	_, pair, err := a.Register(ctx, RegisterParams{Email: "a@b.com", Password: "secret1"})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, model.TokenPair{}, pair)
	_, isAPI := apierrors.From(err)
	assert.False(t, isAPI)
}

func TestAuth_Login(t *testing.T) {
	ctx := context.Background()
	stored := model.User{ID: 4, Email: "a@b.com", PasswordHash: "hashed", Role: model.RoleAdmin}

	tests := []struct {
		name     string
		setup    func(d authDeps)
		password string
		wantErr  bool
	}{
		{
			name:     "valid credentials",
			password: "secret1",
			setup: func(d authDeps) {
				d.users.On("GetByEmail", ctx, "a@b.com").Return(stored, nil).Once()
				d.creds.On("Verify", "secret1", "hashed").Return(true).Once()
				d.store.On("Save", ctx, int64(4), mock.Anything).Return(model.RefreshTokenRecord{ID: 20}, nil).Once()
				d.manager.On("GenerateAccessToken", stored.Principal()).Return("access", nil).Once()
				d.manager.On("GenerateRefreshToken", stored.Principal(), int64(20)).Return("refresh", nil).Once()
			},
		},
		{
			name:     "wrong password",
			password: "wrong",
			wantErr:  true,
			setup: func(d authDeps) {
				d.users.On("GetByEmail", ctx, "a@b.com").Return(stored, nil).Once()
				d.creds.On("Verify", "wrong", "hashed").Return(false).Once()
			},
		},
		{
			name:     "unknown email",
			password: "secret1",
			wantErr:  true,
			setup: func(d authDeps) {
				d.users.On("GetByEmail", ctx, "a@b.com").Return(model.User{}, model.ErrNotFound).Once()
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, deps := newAuth()
			tt.setup(deps)

			user, pair, err := a.Login(ctx, "a@b.com", tt.password)
			if tt.wantErr {
				requireAPIError(t, err, http.StatusBadRequest, "Email or password does not match.")
				assert.Equal(t, model.TokenPair{}, pair)
				deps.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(4), user.ID)
			assert.Equal(t, int64(20), pair.RecordID)
		})
	}
}

func TestAuth_Self(t *testing.T) {
	ctx := context.Background()
	a, deps := newAuth()

	deps.users.On("GetByID", ctx, int64(4)).Return(model.User{ID: 4, Email: "a@b.com"}, nil).Once()
	deps.users.On("GetByID", ctx, int64(5)).Return(model.User{}, model.ErrNotFound).Once()

	user, err := a.Self(ctx, model.Principal{ID: 4})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)

	_, err = a.Self(ctx, model.Principal{ID: 5})
	requireAPIError(t, err, http.StatusBadRequest, "User does not exist.")
}

func TestAuth_Refresh(t *testing.T) {
	ctx := context.Background()
	claims := model.RefreshTokenClaims{PrincipalID: 4, Role: model.RoleCustomer, RecordID: 20}

	t.Run("rotated", func(t *testing.T) {
		a, deps := newAuth()
		deps.store.On("Rotate", ctx, int64(20), int64(4), mock.Anything, mock.Anything).
			Return(model.RefreshTokenRecord{ID: 21}, nil).Once()
		deps.manager.On("GenerateAccessToken", claims.Principal()).Return("a2", nil).Once()
		deps.manager.On("GenerateRefreshToken", claims.Principal(), int64(21)).Return("r2", nil).Once()

		pair, err := a.Refresh(ctx, claims)
		require.NoError(t, err)
		assert.Equal(t, int64(21), pair.RecordID)
	})

	t.Run("lost the race", func(t *testing.T) {
		a, deps := newAuth()
		deps.store.On("Rotate", ctx, int64(20), int64(4), mock.Anything, mock.Anything).
			Return(model.RefreshTokenRecord{}, model.ErrNotFound).Once()

		_, err := a.Refresh(ctx, claims)
		requireAPIError(t, err, http.StatusUnauthorized, "Invalid token")
	})
}

func TestAuth_Logout(t *testing.T) {
	ctx := context.Background()
	claims := model.RefreshTokenClaims{PrincipalID: 4, Role: model.RoleCustomer, RecordID: 20}

	a, deps := newAuth()
	deps.store.On("Delete", ctx, int64(20)).Return(nil).Once()
	deps.store.On("Delete", ctx, int64(20)).Return(model.ErrNotFound).Once()

	require.NoError(t, a.Logout(ctx, claims))
	require.NoError(t, a.Logout(ctx, claims))
	deps.store.AssertExpectations(t)
}
