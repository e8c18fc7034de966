package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/auth-service/internal/model"
)

// RefreshTokenStore is a mock implementation of model.RefreshTokenStore.
type RefreshTokenStore struct {
	mock.Mock
}

func (m *RefreshTokenStore) Save(ctx context.Context, ownerID int64, expiresAt time.Time) (model.RefreshTokenRecord, error) {
	args := m.Called(ctx, ownerID, expiresAt)
	return args.Get(0).(model.RefreshTokenRecord), args.Error(1)
}

func (m *RefreshTokenStore) FindOne(ctx context.Context, id, ownerID int64) (model.RefreshTokenRecord, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(model.RefreshTokenRecord), args.Error(1)
}

func (m *RefreshTokenStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RefreshTokenStore) Rotate(ctx context.Context, oldID, ownerID int64, now, expiresAt time.Time) (model.RefreshTokenRecord, error) {
	args := m.Called(ctx, oldID, ownerID, now, expiresAt)
	return args.Get(0).(model.RefreshTokenRecord), args.Error(1)
}

func (m *RefreshTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
