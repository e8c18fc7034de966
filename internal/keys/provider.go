// Package keys loads the access-token signing key and publishes its public
// half as a JWK set.
package keys

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/MicahParks/jwkset"
)

// Provider holds the RSA signing key. It is read-only after construction.
type Provider struct {
	privateKey *rsa.PrivateKey
	keyID      string
	jwks       json.RawMessage
}

// NewProvider builds a Provider for key. An empty keyID is replaced with a
// thumbprint of the public key.
func NewProvider(ctx context.Context, key *rsa.PrivateKey, keyID string) (*Provider, error) {
	if key == nil {
		return nil, fmt.Errorf("private key is nil")
	}

	if keyID == "" {
		kid, err := thumbprint(&key.PublicKey)
		if err != nil {
			return nil, err
		}
		keyID = kid
	}

	jwk, err := jwkset.NewJWKFromKey(&key.PublicKey, jwkset.JWKOptions{
		Metadata: jwkset.JWKMetadataOptions{
			ALG: jwkset.AlgRS256,
			KID: keyID,
			USE: jwkset.UseSig,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build jwk: %w", err)
	}

	set := jwkset.NewMemoryStorage()
	if err := set.KeyWrite(ctx, jwk); err != nil {
		return nil, fmt.Errorf("failed to store jwk: %w", err)
	}

	raw, err := set.JSONPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal jwk set: %w", err)
	}

	return &Provider{privateKey: key, keyID: keyID, jwks: raw}, nil
}

// Load reads key material from src and builds a Provider. Every failure is
// reported as a *LoadError.
func Load(ctx context.Context, src Source, keyID string) (*Provider, error) {
	data, err := src.Load(ctx)
	if err != nil {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}

	key, err := ParsePrivateKey(data)
	if err != nil {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}

	p, err := NewProvider(ctx, key, keyID)
	if err != nil {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}
	return p, nil
}

func (p *Provider) PrivateKey() *rsa.PrivateKey { return p.privateKey }

func (p *Provider) PublicKey() *rsa.PublicKey { return &p.privateKey.PublicKey }

func (p *Provider) KeyID() string { return p.keyID }

// JWKS returns the public key set document.
func (p *Provider) JWKS() json.RawMessage { return p.jwks }

func thumbprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return base64.RawURLEncoding.EncodeToString(sum[:12]), nil
}
