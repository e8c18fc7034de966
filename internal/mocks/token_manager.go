package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/auth-service/internal/model"
)

// TokenManager is a mock implementation of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) GenerateAccessToken(principal model.Principal) (string, error) {
	args := m.Called(principal)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) GenerateRefreshToken(principal model.Principal, recordID int64) (string, error) {
	args := m.Called(principal, recordID)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) ParseAccessToken(token string) (model.AccessTokenClaims, error) {
	args := m.Called(token)
	return args.Get(0).(model.AccessTokenClaims), args.Error(1)
}

func (m *TokenManager) ParseRefreshToken(token string) (model.RefreshTokenClaims, error) {
	args := m.Called(token)
	return args.Get(0).(model.RefreshTokenClaims), args.Error(1)
}
