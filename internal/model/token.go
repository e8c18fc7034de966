package model

import "time"

// Issuer is embedded into every token this service signs.
const Issuer = "auth-service"

const (
	// AccessTokenTTL is the lifetime of an access token and its cookie.
	AccessTokenTTL = time.Hour
	// RefreshTokenTTL is the lifetime of a refresh token, its cookie and its record.
	RefreshTokenTTL = 365 * 24 * time.Hour
)

// AccessTokenClaims are the verified contents of an access token.
type AccessTokenClaims struct {
	PrincipalID int64
	Role        Role
	ExpiresAt   time.Time
}

// Principal returns the identity carried by the claims.
func (c AccessTokenClaims) Principal() Principal {
	return Principal{ID: c.PrincipalID, Role: c.Role}
}

// RefreshTokenClaims are the verified contents of a refresh token.
type RefreshTokenClaims struct {
	PrincipalID int64
	Role        Role
	RecordID    int64
	ExpiresAt   time.Time
}

// Principal returns the identity carried by the claims.
func (c RefreshTokenClaims) Principal() Principal {
	return Principal{ID: c.PrincipalID, Role: c.Role}
}

// TokenPair is the result of a mint event.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	RecordID     int64
}

// TokenManager signs and verifies access and refresh tokens.
type TokenManager interface {
	GenerateAccessToken(principal Principal) (string, error)
	GenerateRefreshToken(principal Principal, recordID int64) (string, error)
	ParseAccessToken(token string) (AccessTokenClaims, error)
	ParseRefreshToken(token string) (RefreshTokenClaims, error)
}
