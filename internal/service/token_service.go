package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
)

// TokenRecorder receives token lifecycle events, e.g. for metrics.
type TokenRecorder interface {
	TokenIssued(kind string)
	RefreshRejected(reason string)
}

type noopRecorder struct{}

func (noopRecorder) TokenIssued(string)     {}
func (noopRecorder) RefreshRejected(string) {}

// TokenService provides high-level operations for issuing, rotating,
// verifying and revoking tokens. It composes the TokenManager and the
// RefreshTokenStore and is the only writer of refresh token records.
type TokenService struct {
	manager  model.TokenManager
	store    model.RefreshTokenStore
	logger   *logger.Logger
	recorder TokenRecorder
	now      func() time.Time
}

// TokenServiceOption configures a TokenService.
type TokenServiceOption func(*TokenService)

// WithClock overrides the time source used for record expiry.
func WithClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) { s.now = now }
}

// WithRecorder sets the lifecycle event recorder.
func WithRecorder(r TokenRecorder) TokenServiceOption {
	return func(s *TokenService) { s.recorder = r }
}

func NewTokenService(manager model.TokenManager, store model.RefreshTokenStore, logger *logger.Logger, opts ...TokenServiceOption) *TokenService {
	s := &TokenService{
		manager:  manager,
		store:    store,
		logger:   logger,
		recorder: noopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) GenerateAccessToken(principal model.Principal) (string, error) {
	return s.manager.GenerateAccessToken(principal)
}

func (s *TokenService) GenerateRefreshToken(principal model.Principal, recordID int64) (string, error) {
	return s.manager.GenerateRefreshToken(principal, recordID)
}

// PersistRefreshToken stores a new record owned by principal that expires
// one refresh lifetime from now.
func (s *TokenService) PersistRefreshToken(ctx context.Context, principal model.Principal) (model.RefreshTokenRecord, error) {
	rec, err := s.store.Save(ctx, principal.ID, s.now().Add(model.RefreshTokenTTL))
	if err != nil {
		return model.RefreshTokenRecord{}, fmt.Errorf("persist refresh: %w", err)
	}
	return rec, nil
}

// DeleteRefreshToken removes a record. A missing record is not an error.
func (s *TokenService) DeleteRefreshToken(ctx context.Context, recordID int64) error {
	if err := s.store.Delete(ctx, recordID); err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("delete refresh: %w", err)
	}
	return nil
}

// IssuePair persists a refresh record and mints an access/refresh pair for it.
// Nothing is returned to the caller unless both tokens exist and the record
// is stored.
func (s *TokenService) IssuePair(ctx context.Context, principal model.Principal) (model.TokenPair, error) {
	rec, err := s.PersistRefreshToken(ctx, principal)
	if err != nil {
		return model.TokenPair{}, err
	}

	pair, err := s.mint(principal, rec.ID)
	if err != nil {
		if delErr := s.DeleteRefreshToken(ctx, rec.ID); delErr != nil {
			s.logger.Error("Token service: failed to discard orphaned refresh record",
				"record_id", rec.ID,
				"error", delErr.Error())
		}
		return model.TokenPair{}, err
	}

	return pair, nil
}

// Rotate replaces the record behind claims with a new one and mints a new
// pair. A record that is gone, expired or already rotated yields
// ErrTokenRevoked, so two concurrent rotations of one token cannot both win.
func (s *TokenService) Rotate(ctx context.Context, claims model.RefreshTokenClaims) (model.TokenPair, error) {
	principal := claims.Principal()
	now := s.now()

	rec, err := s.store.Rotate(ctx, claims.RecordID, principal.ID, now, now.Add(model.RefreshTokenTTL))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.recorder.RefreshRejected("revoked")
			s.logger.Info("Token service: refresh token already rotated or revoked",
				"user_id", principal.ID,
				"record_id", claims.RecordID)
			return model.TokenPair{}, model.ErrTokenRevoked
		}
		return model.TokenPair{}, fmt.Errorf("rotate refresh: %w", err)
	}

	return s.mint(principal, rec.ID)
}

// VerifyAccess checks an access token. Storage is never consulted.
func (s *TokenService) VerifyAccess(token string) (model.Principal, error) {
	claims, err := s.manager.ParseAccessToken(token)
	if err != nil {
		return model.Principal{}, err
	}
	return claims.Principal(), nil
}

// ValidateRefresh checks a refresh token signature and then requires its
// record to exist and be unexpired. Storage failures reject the token.
func (s *TokenService) ValidateRefresh(ctx context.Context, token string) (model.RefreshTokenClaims, error) {
	claims, err := s.manager.ParseRefreshToken(token)
	if err != nil {
		s.recorder.RefreshRejected("invalid")
		return model.RefreshTokenClaims{}, err
	}

	rec, err := s.store.FindOne(ctx, claims.RecordID, claims.PrincipalID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Error("Token service: failed to look up refresh token",
				"user_id", claims.PrincipalID,
				"record_id", claims.RecordID,
				"error", err.Error())
		}
		s.recorder.RefreshRejected("revoked")
		return model.RefreshTokenClaims{}, model.ErrTokenRevoked
	}

	if rec.Expired(s.now()) {
		s.recorder.RefreshRejected("expired")
		return model.RefreshTokenClaims{}, model.ErrTokenExpired
	}

	return claims, nil
}

func (s *TokenService) mint(principal model.Principal, recordID int64) (model.TokenPair, error) {
	access, err := s.manager.GenerateAccessToken(principal)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.manager.GenerateRefreshToken(principal, recordID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue refresh: %w", err)
	}

	s.recorder.TokenIssued("access")
	s.recorder.TokenIssued("refresh")

	return model.TokenPair{AccessToken: access, RefreshToken: refresh, RecordID: recordID}, nil
}
