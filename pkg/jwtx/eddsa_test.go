package jwtx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tablechat/tablechat/pkg/cryptox"
	"github.com/tablechat/tablechat/pkg/jwtx"
)

func TestEdDSASignAndVerify(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519PEM()
	require.NoError(t, err)

	kid := "test-key-eddsa"

	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	require.NotNil(t, signer)
	require.NoError(t, signer.Validate())
	require.Equal(t, "EdDSA", signer.Alg())
	require.Equal(t, kid, signer.KID())

	now := time.Now().UTC()
	claims := jwtx.NewAccessClaims(
		"acct-456",
		[]string{"USER", "ADMIN"},
		"eddsauser",
		exampleIssuer,
		5*time.Minute,
		now,
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	jwks := keyset.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)
	require.NotEmpty(t, jwks.Keys[0].X)

	verifier := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil)

	parsedClaims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.NotNil(t, parsedClaims)

	require.Equal(t, claims.Issuer, parsedClaims.Issuer)
	require.Equal(t, claims.Subject, parsedClaims.Subject)
	require.ElementsMatch(t, claims.Roles, parsedClaims.Roles)
	require.Equal(t, claims.TokenType, parsedClaims.TokenType)
	require.Equal(t, claims.Nickname, parsedClaims.Nickname)
	require.NotEmpty(t, parsedClaims.ID) // JTI should be set
}

func TestEdDSAVerifyFailsForWrongIssuer(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519PEM()
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)

	now := time.Now().UTC()
	claims := jwtx.NewAccessClaims("acct-789", nil, "", exampleIssuer, time.Minute, now)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	verifier := jwtx.NewVerifierEdDSA(keyset, "wrong-issuer", nil)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestEdDSAVerifyFailsForUnknownKey(t *testing.T) {
	pemKey1, err := cryptox.GenerateEd25519PEM()
	require.NoError(t, err)
	signer1, err := jwtx.NewSignerEdDSA("key1", pemKey1)
	require.NoError(t, err)

	pemKey2, err := cryptox.GenerateEd25519PEM()
	require.NoError(t, err)
	signer2, err := jwtx.NewSignerEdDSA("key2", pemKey2)
	require.NoError(t, err)

	claims := jwtx.NewAccessClaims("acct-1", nil, "", exampleIssuer, time.Minute, time.Now().UTC())
	token, err := signer1.Sign(claims)
	require.NoError(t, err)

	// KeySet only knows about the second key
	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer2))

	verifier := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}

func TestEdDSAVerifyFailsForTamperedToken(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519PEM()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)

	claims := jwtx.NewAccessClaims("acct-1", nil, "", exampleIssuer, time.Minute, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	// Flip a character in the signature segment
	tampered := token[:len(token)-2] + "xx"

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))
	verifier := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil)

	_, err = verifier.Verify(tampered)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestEdDSAVerifyFailsForGarbage(t *testing.T) {
	keyset := jwtx.NewKeySet()
	verifier := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil)

	_, err := verifier.Verify("not.a.jwt")
	require.ErrorIs(t, err, jwtx.ErrMalformed)

	_, err = verifier.Verify("")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestEdDSAVerifyFailsForExpiredToken(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519PEM()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)

	// Issued an hour ago with a one minute TTL
	claims := jwtx.NewAccessClaims("acct-1", nil, "", exampleIssuer, time.Minute, time.Now().UTC().Add(-time.Hour))
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))
	verifier := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}
