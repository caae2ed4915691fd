package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tablechat/tablechat/pkg/idx"
)

// Default token TTLs. Access tokens are short-lived on purpose; refresh
// tokens stretch to days and are revocable through the revocation store.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token type tags embedded in the claims. The verifier rejects a token
// presented for the wrong purpose (e.g. a refresh token on a protected
// route) even though both carry valid signatures.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims are the signed claim bundle shared by access and refresh tokens.
// The subject is the account id, possibly field-encrypted by the caller
// before signing. Keep changes additive to preserve compatibility.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType distinguishes access from refresh tokens.
	TokenType string `json:"typ,omitempty"`

	// Roles the account holds, e.g. ["USER"] or ["USER","ADMIN"].
	Roles []string `json:"roles,omitempty"`

	// Nickname is the display name, carried for convenience so resource
	// handlers don't need an account lookup.
	Nickname string `json:"nickname,omitempty"`
}

// NewAccessClaims builds minimally-correct access-token claims. The jti is a
// ULID so revocation keys sort by issue time.
func NewAccessClaims(subject string, roles []string, nickname, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.New().String(),
		},
		TokenType: TypeAccess,
		Roles:     roles,
		Nickname:  nickname,
	}
}

// NewRefreshClaims builds refresh-token claims. Refresh tokens carry no role
// material; roles are re-derived from the paired access token on reissue.
func NewRefreshClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.New().String(),
		},
		TokenType: TypeRefresh,
	}
}

// HasRole reports whether the claims carry the given role string.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks that the token carries at least one of the
// expected audience values. An empty expectation means "don't care".
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateType checks the token type tag.
func (c *Claims) ValidateType(expected string) error {
	if c.TokenType != expected {
		return ErrWrongType
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// RemainingLifetime returns how long until the token expires, clamped at
// zero. Used to size revocation-store TTLs.
func (c *Claims) RemainingLifetime() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}
