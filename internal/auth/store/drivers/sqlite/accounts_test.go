package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tablechat/tablechat/internal/auth/domain"
	"github.com/tablechat/tablechat/internal/auth/store"
	"github.com/tablechat/tablechat/internal/auth/store/drivers/sqlite"
	"github.com/tablechat/tablechat/pkg/idx"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestAccount(email, nickname string) domain.Account {
	return domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		Nickname:     nickname,
		PasswordHash: "hash",
		Roles:        []string{domain.RoleUser},
	}
}

func TestAccountsCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := newTestAccount("alice@example.com", "alice")
	require.NoError(t, s.Accounts().Create(ctx, a))

	byID, err := s.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.Email, byID.Email)
	require.Equal(t, a.Nickname, byID.Nickname)
	require.Equal(t, []string{domain.RoleUser}, byID.Roles)
	require.False(t, byID.IsFederated())
	require.WithinDuration(t, time.Now().UTC(), byID.CreatedAt, time.Minute)

	byEmail, err := s.Accounts().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, byEmail.ID)
}

func TestAccountsGetMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Accounts().GetByID(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Accounts().GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Accounts().GetByProvider(ctx, "google", "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountsUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Accounts().Create(ctx, newTestAccount("alice@example.com", "alice")))

	dupEmail := newTestAccount("alice@example.com", "alice2")
	require.ErrorIs(t, s.Accounts().Create(ctx, dupEmail), store.ErrAlreadyExists)

	dupNick := newTestAccount("alice2@example.com", "alice")
	require.ErrorIs(t, s.Accounts().Create(ctx, dupNick), store.ErrAlreadyExists)
}

func TestAccountsFederated(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	fed := domain.Account{
		ID:              idx.New().String(),
		Email:           "bob@example.com",
		Nickname:        "bob",
		Roles:           []string{domain.RoleUser},
		Provider:        "google",
		ProviderSubject: "sub-123",
	}
	require.NoError(t, s.Accounts().Create(ctx, fed))

	got, err := s.Accounts().GetByProvider(ctx, "google", "sub-123")
	require.NoError(t, err)
	require.Equal(t, fed.ID, got.ID)
	require.True(t, got.IsFederated())
	require.Empty(t, got.PasswordHash)

	// Same subject under a different provider is a separate identity
	_, err = s.Accounts().GetByProvider(ctx, "github", "sub-123")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Two local accounts don't collide on the empty provider pair
	require.NoError(t, s.Accounts().Create(ctx, newTestAccount("c@example.com", "carol")))
	require.NoError(t, s.Accounts().Create(ctx, newTestAccount("d@example.com", "dave")))
}

func TestAccountsExists(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Accounts().Create(ctx, newTestAccount("alice@example.com", "alice")))

	ok, err := s.Accounts().ExistsEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Accounts().ExistsEmail(ctx, "other@example.com")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.Accounts().ExistsNickname(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Accounts().ExistsNickname(ctx, "zed")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAccountsList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Accounts().Create(ctx, newTestAccount("a@example.com", "aa")))
	require.NoError(t, s.Accounts().Create(ctx, newTestAccount("b@example.com", "bb")))

	accounts, err := s.Accounts().List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
}
