package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dtroode/auth-service/internal/keys"
	"github.com/dtroode/auth-service/internal/model"
)

// accessClaims is the payload of an access token: {sub, role, iss, iat, exp}.
type accessClaims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

// refreshClaims is the payload of a refresh token: {sub, role, id, iss, iat, exp}.
type refreshClaims struct {
	jwt.RegisteredClaims
	Role     model.Role `json:"role"`
	RecordID string     `json:"id"`
}

// Config carries the signing material. It is built once at startup and passed
// in explicitly.
type Config struct {
	PrivateKey    *rsa.PrivateKey
	KeyID         string
	RefreshSecret []byte
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// JWT implements TokenManager with RS256 access tokens and HS256 refresh tokens.
type JWT struct {
	privateKey    *rsa.PrivateKey
	keyID         string
	refreshSecret []byte
	now           func() time.Time
	accessParser  *jwt.Parser
	refreshParser *jwt.Parser
}

var _ model.TokenManager = (*JWT)(nil)

// NewJWT creates a token manager. Missing key material is reported as a
// *keys.LoadError.
func NewJWT(cfg Config) (*JWT, error) {
	if cfg.PrivateKey == nil {
		return nil, &keys.LoadError{Source: "token config", Err: errors.New("access token signing key is missing")}
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, &keys.LoadError{Source: "token config", Err: errors.New("refresh token secret is missing")}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &JWT{
		privateKey:    cfg.PrivateKey,
		keyID:         cfg.KeyID,
		refreshSecret: cfg.RefreshSecret,
		now:           now,
		accessParser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(model.Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
		refreshParser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(model.Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}, nil
}

// GenerateAccessToken creates a short-lived RS256 access token.
func (j *JWT) GenerateAccessToken(principal model.Principal) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.Subject(),
			Issuer:    model.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(model.AccessTokenTTL)),
		},
		Role: principal.Role,
	})
	if j.keyID != "" {
		token.Header["kid"] = j.keyID
	}

	tokenString, err := token.SignedString(j.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken creates a long-lived HS256 refresh token bound to recordID.
func (j *JWT) GenerateRefreshToken(principal model.Principal, recordID int64) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.Subject(),
			Issuer:    model.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(model.RefreshTokenTTL)),
		},
		Role:     principal.Role,
		RecordID: strconv.FormatInt(recordID, 10),
	})

	tokenString, err := token.SignedString(j.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, nil
}

// ParseAccessToken verifies an access token and returns its claims.
func (j *JWT) ParseAccessToken(tokenString string) (model.AccessTokenClaims, error) {
	claims := &accessClaims{}
	_, err := j.accessParser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return &j.privateKey.PublicKey, nil
	})
	if err != nil {
		return model.AccessTokenClaims{}, classify("access", err)
	}

	expiresAt, err := j.checkExpiry(claims.ExpiresAt)
	if err != nil {
		return model.AccessTokenClaims{}, err
	}

	id, err := model.ParseSubject(claims.Subject)
	if err != nil {
		return model.AccessTokenClaims{}, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}
	if !claims.Role.Valid() {
		return model.AccessTokenClaims{}, fmt.Errorf("%w: role is missing", model.ErrTokenInvalid)
	}

	return model.AccessTokenClaims{PrincipalID: id, Role: claims.Role, ExpiresAt: expiresAt}, nil
}

// ParseRefreshToken verifies a refresh token signature and returns its claims.
// It does not consult storage.
func (j *JWT) ParseRefreshToken(tokenString string) (model.RefreshTokenClaims, error) {
	claims := &refreshClaims{}
	_, err := j.refreshParser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return j.refreshSecret, nil
	})
	if err != nil {
		return model.RefreshTokenClaims{}, classify("refresh", err)
	}

	expiresAt, err := j.checkExpiry(claims.ExpiresAt)
	if err != nil {
		return model.RefreshTokenClaims{}, err
	}

	id, err := model.ParseSubject(claims.Subject)
	if err != nil {
		return model.RefreshTokenClaims{}, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}
	recordID, err := strconv.ParseInt(claims.RecordID, 10, 64)
	if err != nil || recordID <= 0 {
		return model.RefreshTokenClaims{}, fmt.Errorf("%w: invalid record id %q", model.ErrTokenInvalid, claims.RecordID)
	}
	if !claims.Role.Valid() {
		return model.RefreshTokenClaims{}, fmt.Errorf("%w: role is missing", model.ErrTokenInvalid)
	}

	return model.RefreshTokenClaims{
		PrincipalID: id,
		Role:        claims.Role,
		RecordID:    recordID,
		ExpiresAt:   expiresAt,
	}, nil
}

// checkExpiry rejects a token from its exp second onwards.
func (j *JWT) checkExpiry(exp *jwt.NumericDate) (time.Time, error) {
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: exp is missing", model.ErrTokenInvalid)
	}
	if !j.now().Before(exp.Time) {
		return time.Time{}, model.ErrTokenExpired
	}
	return exp.Time, nil
}

func classify(kind string, err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return fmt.Errorf("%w: %s token: %v", model.ErrTokenExpired, kind, err)
	}
	return fmt.Errorf("%w: %s token: %v", model.ErrTokenInvalid, kind, err)
}
