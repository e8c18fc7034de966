// Package verifier lets other services check access tokens issued by
// auth-service against its published JWK set.
package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the iss claim auth-service puts into every token.
const Issuer = "auth-service"

// WellKnownPath is where auth-service serves its JWK set.
const WellKnownPath = "/.well-known/jwks.json"

var ErrInvalidToken = errors.New("invalid access token")

// Claims are the verified contents of an access token.
type Claims struct {
	UserID    int64
	Role      string
	ExpiresAt time.Time
}

type accessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Verifier checks RS256 access tokens.
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

// New fetches the JWK set from jwksURL and keeps it refreshed in the
// background until ctx is done.
func New(ctx context.Context, jwksURL string) (*Verifier, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to load jwk set: %w", err)
	}
	return newVerifier(k.Keyfunc), nil
}

// NewFromJSON builds a Verifier from a static JWK set.
func NewFromJSON(raw json.RawMessage) (*Verifier, error) {
	k, err := keyfunc.NewJWKSetJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jwk set: %w", err)
	}
	return newVerifier(k.Keyfunc), nil
}

func newVerifier(kf jwt.Keyfunc) *Verifier {
	return &Verifier{
		keyfunc: kf,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify checks the signature, issuer and expiry of token.
func (v *Verifier) Verify(token string) (Claims, error) {
	var claims accessClaims
	if _, err := v.parser.ParseWithClaims(token, &claims, v.keyfunc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.Role == "" {
		return Claims{}, fmt.Errorf("%w: malformed claims", ErrInvalidToken)
	}

	return Claims{
		UserID:    id,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// FromRequest verifies the bearer token or, failing that, the accessToken
// cookie of r.
func (v *Verifier) FromRequest(r *http.Request) (Claims, error) {
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return v.Verify(strings.TrimSpace(h[7:]))
	}
	if c, err := r.Cookie("accessToken"); err == nil && c.Value != "" {
		return v.Verify(c.Value)
	}
	return Claims{}, fmt.Errorf("%w: no token", ErrInvalidToken)
}
