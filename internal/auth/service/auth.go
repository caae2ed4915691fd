package service

import (
	"context"

	"github.com/tablechat/tablechat/internal/auth/domain"
	"github.com/tablechat/tablechat/pkg/jwtx"
	"github.com/tablechat/tablechat/pkg/slogx"
)

// AuthService orchestrates the login, reissue, and logout flows on top of
// the identity and token services.
type AuthService struct {
	Identity *IdentityService
	Tokens   *TokenService
}

// Login resolves local credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	account, err := s.Identity.ResolveLocal(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.Tokens.IssuePair(ctx, account)
}

// LoginFederated resolves a verified provider profile (provisioning on first
// login) and issues the same token pair a local login would get.
func (s *AuthService) LoginFederated(ctx context.Context, profile FederatedProfile) (*domain.TokenPair, error) {
	account, err := s.Identity.ResolveFederated(ctx, profile)
	if err != nil {
		return nil, err
	}
	return s.Tokens.IssuePair(ctx, account)
}

// Reissue rotates a refresh token: the presented token is verified, burned,
// and replaced by a fresh pair. A refresh token can only ever be redeemed
// once; replaying it after rotation fails with ErrTokenRevoked.
func (s *AuthService) Reissue(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	// Roles may have changed since the pair was minted, so reload the
	// account rather than copying claims forward.
	account, err := s.Identity.Store.Accounts().GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	// Burn the old jti before issuing. If issuing then fails the client
	// re-authenticates; the alternative order would leave a replayable
	// refresh token on a crash.
	if err := s.Tokens.RevokeRefresh(ctx, claims.ID); err != nil {
		return nil, err
	}

	pair, err := s.Tokens.IssuePair(ctx, account)
	if err != nil {
		return nil, err
	}

	l.Info("token pair rotated", "account_id", account.ID, "old_refresh_jti", claims.ID)
	return pair, nil
}

// Logout revokes both halves of a session: the refresh token is removed from
// the store and the access token is blacklisted for its remaining lifetime.
// Either token may be absent or already dead; logout still succeeds, so
// repeating it is harmless.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	l := slogx.FromContext(ctx)

	if refreshToken != "" {
		// Verify structure only as far as needed to find the jti. An
		// already-rotated token still gets its Remove (a no-op).
		if claims, err := s.Tokens.verify(refreshToken, jwtx.TypeRefresh); err == nil {
			if err := s.Tokens.RevokeRefresh(ctx, claims.ID); err != nil {
				return err
			}
		}
	}

	if accessToken != "" {
		if claims, err := s.Tokens.verify(accessToken, jwtx.TypeAccess); err == nil {
			if err := s.Tokens.BlacklistAccess(ctx, claims); err != nil {
				return err
			}
		}
	}

	l.Info("logout processed")
	return nil
}
