package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/tablechat/tablechat/pkg/jwtx"
)

const exampleIssuer = "tablechat-auth"

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "auth-service",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("auth-service"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		err := c.ValidateIssuer("chat-service")
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience: []string{"chat", "media"},
		},
	}

	t.Run("contains match", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience([]string{"chat"}))
	})

	t.Run("multiple match", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience([]string{"foo", "media"}))
	})

	t.Run("no match", func(t *testing.T) {
		err := c.ValidateAudience([]string{"admin"})
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})

	t.Run("empty expected list", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience(nil))
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid window", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}
		require.NoError(t, c.ValidateExpiry())
	})

	t.Run("expired", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			},
		}
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now.Add(time.Minute)),
				ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Minute)),
			},
		}
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrNotYetValid)
	})
}

func TestValidateType(t *testing.T) {
	access := jwtx.NewAccessClaims("acct-1", []string{"USER"}, "nick", exampleIssuer, time.Minute, time.Now().UTC())
	refresh := jwtx.NewRefreshClaims("acct-1", exampleIssuer, time.Hour, time.Now().UTC())

	require.NoError(t, access.ValidateType(jwtx.TypeAccess))
	require.NoError(t, refresh.ValidateType(jwtx.TypeRefresh))

	require.ErrorIs(t, access.ValidateType(jwtx.TypeRefresh), jwtx.ErrWrongType)
	require.ErrorIs(t, refresh.ValidateType(jwtx.TypeAccess), jwtx.ErrWrongType)
}

func TestClaimBuilders(t *testing.T) {
	now := time.Now().UTC()

	access := jwtx.NewAccessClaims("acct-9", []string{"USER", "ADMIN"}, "tester", exampleIssuer, 15*time.Minute, now)
	require.Equal(t, jwtx.TypeAccess, access.TokenType)
	require.Equal(t, "acct-9", access.Subject)
	require.Equal(t, exampleIssuer, access.Issuer)
	require.NotEmpty(t, access.ID)
	require.True(t, access.HasRole("ADMIN"))
	require.False(t, access.HasRole("AUDITOR"))
	require.WithinDuration(t, now.Add(15*time.Minute), access.ExpiresAt.Time, time.Second)

	refresh := jwtx.NewRefreshClaims("acct-9", exampleIssuer, 7*24*time.Hour, now)
	require.Equal(t, jwtx.TypeRefresh, refresh.TokenType)
	require.Empty(t, refresh.Roles)
	require.NotEmpty(t, refresh.ID)
	require.NotEqual(t, access.ID, refresh.ID)
}

func TestRemainingLifetime(t *testing.T) {
	now := time.Now().UTC()

	live := jwtx.NewAccessClaims("acct-1", nil, "", exampleIssuer, time.Hour, now)
	require.InDelta(t, time.Hour, live.RemainingLifetime(), float64(5*time.Second))

	dead := jwtx.NewAccessClaims("acct-1", nil, "", exampleIssuer, -time.Hour, now)
	require.Equal(t, time.Duration(0), dead.RemainingLifetime())
}
