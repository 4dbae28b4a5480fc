package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "netfliz-portal"

// SessionClaims bind a portal session to a tenant.
type SessionClaims struct {
	TenantID   uuid.UUID `json:"tenantId"`
	TenantSlug string    `json:"tenantSlug"`
	jwt.RegisteredClaims
}

// TokenIssuer mints signed portal session tokens.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
}

// NewTokenIssuer builds an issuer signing with the given HMAC key. ttl
// defaults to 24h when zero.
func NewTokenIssuer(key []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(key) == 0 {
		return nil, errors.New("signing key is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{key: key, ttl: ttl}, nil
}

// Issue returns a signed session token for the tenant.
func (i *TokenIssuer) Issue(tenantID uuid.UUID, tenantSlug string, now time.Time) (string, error) {
	if tenantID == uuid.Nil {
		return "", errors.New("tenant id is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	claims := SessionClaims{
		TenantID:   tenantID,
		TenantSlug: tenantSlug,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   tenantSlug,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// TokenVerifier validates portal session tokens.
type TokenVerifier struct {
	key []byte
}

// NewTokenVerifier builds a verifier for tokens signed with key.
func NewTokenVerifier(key []byte) (*TokenVerifier, error) {
	if len(key) == 0 {
		return nil, errors.New("signing key is required")
	}
	return &TokenVerifier{key: key}, nil
}

// Verify parses the token and returns its claims when the signature, issuer
// and expiry all check out.
func (v *TokenVerifier) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return v.key, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	if claims.TenantID == uuid.Nil {
		return nil, errors.New("session token missing tenant")
	}
	return claims, nil
}
