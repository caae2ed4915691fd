package jwtx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tablechat/tablechat/pkg/jwtx"
)

func TestEphemeralKeyManager(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:  exampleIssuer,
		NumKeys: 3,
	})
	require.NoError(t, err)
	require.True(t, km.IsReady())
	require.Equal(t, 3, km.NumSigners())
	require.Len(t, km.KeySet.PublicJWKS().Keys, 3)

	// Tokens signed by any of the keys verify through the shared verifier
	for range 10 {
		signer := km.GetSigner()
		require.NotNil(t, signer)

		claims := jwtx.NewAccessClaims("acct-1", []string{"USER"}, "nick", exampleIssuer, time.Minute, time.Now().UTC())
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		parsed, err := km.Verifier.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "acct-1", parsed.Subject)
	}
}

func TestEphemeralKeyManagerRequiresIssuer(t *testing.T) {
	_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{})
	require.Error(t, err)
}

func TestEphemeralKeyManagerDefaultsNumKeys(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer})
	require.NoError(t, err)
	require.Equal(t, 3, km.NumSigners())

	capped, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: exampleIssuer, NumKeys: 50})
	require.NoError(t, err)
	require.Equal(t, 10, capped.NumSigners())
}
