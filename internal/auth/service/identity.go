package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tablechat/tablechat/internal/auth/domain"
	"github.com/tablechat/tablechat/internal/auth/store"
	"github.com/tablechat/tablechat/pkg/cryptox"
	"github.com/tablechat/tablechat/pkg/idx"
	"github.com/tablechat/tablechat/pkg/slogx"
)

var (
	// ErrInvalidCredentials is the uniform failure for local login. Unknown
	// email and wrong password produce the same error so callers can't
	// probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrEmailTaken    = errors.New("email_taken")
	ErrNicknameTaken = errors.New("nickname_taken")
)

// How many suffixed nickname candidates to try when provisioning a
// federated account before giving up.
const maxNicknameAttempts = 5

// FederatedProfile is the verified identity handed over by the OIDC layer.
type FederatedProfile struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// IdentityService resolves credentials and federated profiles to accounts,
// and registers new local accounts.
type IdentityService struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher
}

// ResolveLocal checks an email/password pair against the account store.
func (s *IdentityService) ResolveLocal(ctx context.Context, email, password string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login failed, unknown email")
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}

	// Federated accounts have no password to check.
	if account.PasswordHash == "" {
		l.Info("login failed, passwordless account", "account_id", account.ID)
		return domain.Account{}, ErrInvalidCredentials
	}

	if err := s.Hasher.Verify(password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("login failed, wrong password", "account_id", account.ID)
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}

	return account, nil
}

// ResolveFederated maps a verified provider profile to an account,
// auto-provisioning one on first login.
func (s *IdentityService) ResolveFederated(ctx context.Context, profile FederatedProfile) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetByProvider(ctx, profile.Provider, profile.Subject)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, err
	}

	// First login through this provider, provision an account.
	account, err = s.provisionFederated(ctx, profile)
	if err != nil {
		return domain.Account{}, err
	}

	l.Info("federated account provisioned",
		"account_id", account.ID,
		"provider", profile.Provider,
	)
	return account, nil
}

func (s *IdentityService) provisionFederated(ctx context.Context, profile FederatedProfile) (domain.Account, error) {
	base := nicknameFromProfile(profile)

	for attempt := 0; attempt < maxNicknameAttempts; attempt++ {
		nickname := base
		if attempt > 0 {
			suffix, err := cryptox.GenerateToken(4)
			if err != nil {
				return domain.Account{}, err
			}
			nickname = base + "-" + suffix
		}

		account := domain.Account{
			ID:              idx.New().String(),
			Email:           profile.Email,
			Nickname:        nickname,
			Roles:           []string{domain.RoleUser},
			Provider:        profile.Provider,
			ProviderSubject: profile.Subject,
		}

		err := s.Store.Accounts().Create(ctx, account)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, err
		}

		// If the collision is on the email rather than the nickname, a
		// local account already owns this address. Don't silently link.
		taken, checkErr := s.Store.Accounts().ExistsEmail(ctx, profile.Email)
		if checkErr != nil {
			return domain.Account{}, checkErr
		}
		if taken {
			return domain.Account{}, ErrEmailTaken
		}
	}

	return domain.Account{}, fmt.Errorf("could not find a free nickname for %q", base)
}

// Register creates a new local account.
func (s *IdentityService) Register(ctx context.Context, email, nickname, password string) (domain.Account, error) {
	email = strings.TrimSpace(email)
	nickname = strings.TrimSpace(nickname)

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.Account{}, err
	}

	account := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		Nickname:     nickname,
		PasswordHash: hash,
		Roles:        []string{domain.RoleUser},
	}

	if err := s.Store.Accounts().Create(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Work out which constraint tripped for a usable error.
			if taken, checkErr := s.Store.Accounts().ExistsEmail(ctx, email); checkErr == nil && taken {
				return domain.Account{}, ErrEmailTaken
			}
			return domain.Account{}, ErrNicknameTaken
		}
		return domain.Account{}, err
	}

	return account, nil
}

// EmailAvailable reports whether the email is free to register.
func (s *IdentityService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := s.Store.Accounts().ExistsEmail(ctx, strings.TrimSpace(email))
	return !taken, err
}

// NicknameAvailable reports whether the nickname is free to register.
func (s *IdentityService) NicknameAvailable(ctx context.Context, nickname string) (bool, error) {
	taken, err := s.Store.Accounts().ExistsNickname(ctx, strings.TrimSpace(nickname))
	return !taken, err
}

// nicknameFromProfile derives a starting nickname from the provider profile,
// preferring the display name, then the email local part.
func nicknameFromProfile(profile FederatedProfile) string {
	name := strings.TrimSpace(profile.Name)
	if name != "" {
		return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	}
	if at := strings.Index(profile.Email, "@"); at > 0 {
		return strings.ToLower(profile.Email[:at])
	}
	return "member"
}
