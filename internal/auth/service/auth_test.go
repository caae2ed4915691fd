package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/tablechat/tablechat/internal/auth/domain"
	"github.com/tablechat/tablechat/internal/auth/revocation"
	"github.com/tablechat/tablechat/internal/auth/service"
	"github.com/tablechat/tablechat/internal/auth/store/drivers/sqlite"
	"github.com/tablechat/tablechat/pkg/cryptox"
	"github.com/tablechat/tablechat/pkg/jwtx"
)

type fixture struct {
	auth     *service.AuthService
	identity *service.IdentityService
	tokens   *service.TokenService
	redis    *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rev := revocation.NewRedisStore(rdb)
	t.Cleanup(func() { _ = rev.Close() })

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "tablechat-auth", NumKeys: 1})
	require.NoError(t, err)

	cipher, err := cryptox.NewFieldCipher([]byte("0123456789abcdef"))
	require.NoError(t, err)

	identity := &service.IdentityService{
		Store:  st,
		Hasher: cryptox.NewPasswordHasher("test-pepper"),
	}
	tokens := &service.TokenService{
		KeyManager: km,
		Revocation: rev,
		Cipher:     cipher,
		Issuer:     "tablechat-auth",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}

	return &fixture{
		auth:     &service.AuthService{Identity: identity, Tokens: tokens},
		identity: identity,
		tokens:   tokens,
		redis:    mr,
	}
}

func (f *fixture) register(t *testing.T, email, nickname, password string) domain.Account {
	t.Helper()
	account, err := f.identity.Register(context.Background(), email, nickname, password)
	require.NoError(t, err)
	return account
}

func TestLoginIssuesVerifiablePair(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	account := f.register(t, "alice@example.com", "alice", "s3cret-pass")

	pair, err := f.auth.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.Equal(t, int64((15 * time.Minute).Seconds()), pair.ExpiresIn)

	claims, err := f.tokens.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.Subject)
	require.Equal(t, []string{domain.RoleUser}, claims.Roles)
	require.Equal(t, "alice", claims.Nickname)

	refreshClaims, err := f.tokens.VerifyRefresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, account.ID, refreshClaims.Subject)

	// The refresh jti is registered as valid the moment the pair exists.
	require.True(t, f.redis.Exists("refresh:"+refreshClaims.ID))
}

func TestSubjectClaimIsEncrypted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	account := f.register(t, "alice@example.com", "alice", "s3cret-pass")

	pair, err := f.auth.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	// The raw account id must not appear anywhere in the compact JWT.
	require.NotContains(t, pair.AccessToken, account.ID)
	require.NotContains(t, pair.RefreshToken, account.ID)

	// Verifying through a service with a different field key fails even
	// though the signature checks out.
	otherCipher, err := cryptox.NewFieldCipher([]byte("fedcba9876543210"))
	require.NoError(t, err)
	other := *f.tokens
	other.Cipher = otherCipher

	_, err = other.VerifyAccess(ctx, pair.AccessToken)
	require.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice@example.com", "alice", "s3cret-pass")

	_, errUnknown := f.auth.Login(ctx, "nobody@example.com", "whatever")
	_, errWrongPw := f.auth.Login(ctx, "alice@example.com", "wrong-pass")

	require.ErrorIs(t, errUnknown, service.ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPw, service.ErrInvalidCredentials)
	require.Equal(t, errUnknown.Error(), errWrongPw.Error())

	// No tokens were minted, so nothing was written to the store.
	require.Empty(t, f.redis.Keys())
}

func TestTokenTypeConfusionRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice@example.com", "alice", "s3cret-pass")

	pair, err := f.auth.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	// A refresh token on the access path and vice versa both fail.
	_, err = f.tokens.VerifyAccess(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrTokenInvalid)

	_, err = f.tokens.VerifyRefresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestVerifyRejectsGarbageAndTampering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice@example.com", "alice", "s3cret-pass")

	pair, err := f.auth.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = f.tokens.VerifyAccess(ctx, "not-a-token")
	require.ErrorIs(t, err, service.ErrTokenInvalid)

	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "zz"
	_, err = f.tokens.VerifyAccess(ctx, tampered)
	require.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestReissueRotatesRefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	account := f.register(t, "alice@example.com", "alice", "s3cret-pass")

	pair, err := f.auth.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	rotated, err := f.auth.Reissue(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	require.NotEqual(t, pair.AccessToken, rotated.AccessToken)

	// The new pair works
	claims, err := f.tokens.VerifyAccess(ctx, rotated.AccessToken)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.Subject)

	// Replaying the burned refresh token fails
	_, err = f.auth.Reissue(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrTokenRevoked)
}

func TestReissueRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice@example.com", "alice", "s3cret-pass")

	pair, err := f.auth.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = f.auth.Reissue(ctx, pair.AccessToken)
	require.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestLogoutRevokesBothTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice@example.com", "alice", "s3cret-pass")

	pair, err := f.auth.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, pair.AccessToken, pair.RefreshToken))

	_, err = f.tokens.VerifyAccess(ctx, pair.AccessToken)
	require.ErrorIs(t, err, service.ErrTokenRevoked)

	_, err = f.auth.Reissue(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrTokenRevoked)

	// Logout is idempotent
	require.NoError(t, f.auth.Logout(ctx, pair.AccessToken, pair.RefreshToken))

	// Garbage tokens don't break logout either
	require.NoError(t, f.auth.Logout(ctx, "garbage", "garbage"))
	require.NoError(t, f.auth.Logout(ctx, "", ""))
}

func TestVerificationFailsClosedWithoutRedis(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice@example.com", "alice", "s3cret-pass")

	pair, err := f.auth.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	f.redis.Close()

	_, err = f.tokens.VerifyAccess(ctx, pair.AccessToken)
	require.ErrorIs(t, err, revocation.ErrUnavailable)

	_, err = f.tokens.VerifyRefresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, revocation.ErrUnavailable)

	// Issuing also fails since the refresh jti can't be registered
	_, err = f.auth.Login(ctx, "alice@example.com", "s3cret-pass")
	require.ErrorIs(t, err, revocation.ErrUnavailable)
}

func TestFederatedLoginProvisionsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	profile := service.FederatedProfile{
		Provider: "google",
		Subject:  "sub-123",
		Email:    "bob@example.com",
		Name:     "Bob Builder",
	}

	pair, err := f.auth.LoginFederated(ctx, profile)
	require.NoError(t, err)

	claims, err := f.tokens.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, []string{domain.RoleUser}, claims.Roles)
	require.Equal(t, "bob-builder", claims.Nickname)

	// Second login resolves the same account instead of creating another
	pair2, err := f.auth.LoginFederated(ctx, profile)
	require.NoError(t, err)

	claims2, err := f.tokens.VerifyAccess(ctx, pair2.AccessToken)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, claims2.Subject)
}

func TestFederatedLoginNicknameCollision(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice@example.com", "bob-builder", "s3cret-pass")

	pair, err := f.auth.LoginFederated(ctx, service.FederatedProfile{
		Provider: "google",
		Subject:  "sub-456",
		Email:    "bob@example.com",
		Name:     "Bob Builder",
	})
	require.NoError(t, err)

	claims, err := f.tokens.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(claims.Nickname, "bob-builder-"))
}

func TestFederatedLoginRejectsClaimedEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "bob@example.com", "localbob", "s3cret-pass")

	_, err := f.auth.LoginFederated(ctx, service.FederatedProfile{
		Provider: "google",
		Subject:  "sub-789",
		Email:    "bob@example.com",
		Name:     "Other Bob",
	})
	require.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice@example.com", "alice", "s3cret-pass")

	_, err := f.identity.Register(ctx, "alice@example.com", "other", "pass")
	require.ErrorIs(t, err, service.ErrEmailTaken)

	_, err = f.identity.Register(ctx, "other@example.com", "alice", "pass")
	require.ErrorIs(t, err, service.ErrNicknameTaken)
}

func TestAvailabilityChecks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice@example.com", "alice", "s3cret-pass")

	ok, err := f.identity.EmailAvailable(ctx, "alice@example.com")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = f.identity.EmailAvailable(ctx, "new@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.identity.NicknameAvailable(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = f.identity.NicknameAvailable(ctx, "fresh")
	require.NoError(t, err)
	require.True(t, ok)
}
