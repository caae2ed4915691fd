package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tablechat/tablechat/internal/auth/domain"
	"github.com/tablechat/tablechat/internal/auth/revocation"
	"github.com/tablechat/tablechat/pkg/cryptox"
	"github.com/tablechat/tablechat/pkg/jwtx"
	"github.com/tablechat/tablechat/pkg/slogx"
)

var (
	// ErrTokenInvalid covers malformed tokens, bad signatures, and claims
	// that don't fit the expected shape. Deliberately coarse so responses
	// don't leak which check failed.
	ErrTokenInvalid = errors.New("invalid_token")

	// ErrTokenExpired is kept separate from ErrTokenInvalid so logs can
	// tell ordinary expiry from tampering. Clients see the same response
	// for both.
	ErrTokenExpired = errors.New("token_expired")

	// ErrTokenRevoked means the token verified fine but has been revoked
	// (or, for refresh tokens, already rotated away).
	ErrTokenRevoked = errors.New("token_revoked")
)

// TokenService signs and verifies the access/refresh token pair. The account
// id travels field-encrypted in the subject claim, and every verification
// consults the revocation store, failing closed when it is unreachable.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Revocation revocation.Store
	Cipher     *cryptox.FieldCipher
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssuePair signs a fresh access/refresh pair for the account and registers
// the refresh jti as valid. Nothing about the pair is persisted beyond that
// single revocation-store entry.
func (s *TokenService) IssuePair(ctx context.Context, account domain.Account) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	// 1. Encrypt the account id before it goes into the subject claim.
	encSub, err := s.Cipher.EncryptField(account.ID)
	if err != nil {
		return nil, fmt.Errorf("encrypt subject: %w", err)
	}

	signer := s.KeyManager.GetSigner()
	if signer == nil {
		return nil, errors.New("no signing key available")
	}

	// 2. Sign the access token.
	accessClaims := jwtx.NewAccessClaims(encSub, account.Roles, account.Nickname, s.Issuer, s.AccessTTL, now)
	accessToken, err := signer.Sign(accessClaims)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	// 3. Sign the refresh token.
	refreshClaims := jwtx.NewRefreshClaims(encSub, s.Issuer, s.RefreshTTL, now)
	refreshToken, err := signer.Sign(refreshClaims)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	// 4. Register the refresh jti. Without this entry the refresh token is
	// unusable, so a store failure here fails the whole issue.
	if err := s.Revocation.PutRefresh(ctx, refreshClaims.ID, s.RefreshTTL); err != nil {
		return nil, err
	}

	l.Info("token pair issued",
		"account_id", account.ID,
		"access_jti", accessClaims.ID,
		"refresh_jti", refreshClaims.ID,
	)

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}

// VerifyAccess validates an access token end to end: signature, claim
// checks, type tag, blacklist, and subject decryption. The returned claims
// carry the plaintext account id in Subject.
func (s *TokenService) VerifyAccess(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.verify(token, jwtx.TypeAccess)
	if err != nil {
		return jwtx.Claims{}, err
	}

	blocked, err := s.Revocation.AccessBlacklisted(ctx, claims.ID)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if blocked {
		return jwtx.Claims{}, ErrTokenRevoked
	}

	return s.decryptSubject(claims)
}

// VerifyRefresh validates a refresh token. A refresh token whose jti is no
// longer in the store has been rotated or revoked and is rejected.
func (s *TokenService) VerifyRefresh(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.verify(token, jwtx.TypeRefresh)
	if err != nil {
		return jwtx.Claims{}, err
	}

	valid, err := s.Revocation.RefreshValid(ctx, claims.ID)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if !valid {
		return jwtx.Claims{}, ErrTokenRevoked
	}

	return s.decryptSubject(claims)
}

// verify runs signature and claim validation and checks the type tag.
func (s *TokenService) verify(token, wantType string) (jwtx.Claims, error) {
	claims, err := s.KeyManager.Verifier.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, ErrTokenExpired
		}
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if err := claims.ValidateType(wantType); err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	return claims, nil
}

// decryptSubject replaces the encrypted subject with the plaintext account
// id. A subject that doesn't decrypt was minted under a different key and is
// treated as invalid.
func (s *TokenService) decryptSubject(claims jwtx.Claims) (jwtx.Claims, error) {
	id, err := s.Cipher.DecryptField(claims.Subject)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: undecryptable subject", ErrTokenInvalid)
	}
	claims.Subject = id
	return claims, nil
}

// RevokeRefresh removes the refresh jti from the store. Safe to repeat.
func (s *TokenService) RevokeRefresh(ctx context.Context, jti string) error {
	return s.Revocation.RemoveRefresh(ctx, jti)
}

// BlacklistAccess blocks the access jti for the token's remaining lifetime.
func (s *TokenService) BlacklistAccess(ctx context.Context, claims jwtx.Claims) error {
	return s.Revocation.BlacklistAccess(ctx, claims.ID, claims.RemainingLifetime())
}
