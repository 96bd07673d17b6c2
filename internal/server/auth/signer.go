// Package auth implements the signing side of the token protocol: issuing
// RS256-signed access tokens, verifying them, and publishing the key set
// resource servers use for offline validation.
//
// The key pair is loaded once at startup and never mutated; a Signer is safe
// for concurrent use.
package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gatehouse-auth/gatehouse/internal/common"
	"github.com/gatehouse-auth/gatehouse/internal/server/models"
)

// Claims is the access-token payload. Subject is omitted for pure
// client-credential tokens that have no associated user.
type Claims struct {
	jwt.RegisteredClaims
	ClientID string `json:"cid"`
	Scope    string `json:"scope"`
}

// Scopes parses the space-separated scope claim.
func (c *Claims) Scopes() models.ScopeSet {
	return models.ParseScopes(c.Scope)
}

type Config struct {
	// KeyPEM is the PEM-encoded RSA private key. If empty, KeyPath is read
	// instead.
	KeyPEM  string
	KeyPath string

	// KeyID labels the key in token headers and the published key set.
	KeyID string

	// Issuer is this server's identity URL, stamped into the iss claim.
	Issuer string
}

type Signer struct {
	key    *rsa.PrivateKey
	keyID  string
	issuer string
	jwks   []byte
}

// NewSigner loads the configured private key and precomputes the JWKS
// document.
func NewSigner(cfg Config) (*Signer, error) {
	raw := []byte(cfg.KeyPEM)
	if len(raw) == 0 {
		if cfg.KeyPath == "" {
			return nil, errors.New("no signing key configured")
		}
		b, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading signing key: %w", err)
		}
		raw = b
	}

	key, err := parsePrivateKey(raw)
	if err != nil {
		return nil, err
	}
	return NewSignerFromKey(key, cfg.KeyID, cfg.Issuer)
}

// NewSignerFromKey wraps an already-loaded key pair. Used by NewSigner and
// by tests that generate throwaway keys.
func NewSignerFromKey(key *rsa.PrivateKey, keyID, issuer string) (*Signer, error) {
	if issuer == "" {
		return nil, errors.New("no issuer configured")
	}
	if keyID == "" {
		keyID = "1"
	}
	jwks, err := marshalJWKS(&key.PublicKey, keyID)
	if err != nil {
		return nil, fmt.Errorf("building jwks: %w", err)
	}
	return &Signer{key: key, keyID: keyID, issuer: issuer, jwks: jwks}, nil
}

func parsePrivateKey(raw []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("signing key is not PEM")
	}

	if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("signing key is not RSA")
		}
		return key, nil
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing signing key: %w", err)
	}
	return key, nil
}

// Issue signs an access token for the authenticated principal. An empty
// subject produces a token without a sub claim.
func (s *Signer) Issue(subject, clientID string, scopes models.ScopeSet, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		ClientID: clientID,
		Scope:    scopes.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.keyID

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, issuer, and claim schema, returning one
// of the common token error kinds so callers can distinguish expired from
// forged from garbled.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return &s.key.PublicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, common.ErrTokenMalformed
	default:
		return nil, common.ErrTokenInvalid
	}

	if claims.ClientID == "" || claims.IssuedAt == nil {
		return nil, common.ErrTokenMalformed
	}
	return claims, nil
}
