// Package revocation tracks token validity outside the tokens themselves.
// Refresh tokens are valid only while their jti is present in the store,
// and access tokens can be blacklisted ahead of their natural expiry.
package revocation

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when the backing store cannot be reached.
// Callers fail closed: a token whose revocation state is unknown is not
// accepted.
var ErrUnavailable = errors.New("revocation: store unavailable")

// Store is the revocation state backend.
//
// Refresh-token jtis are written at issue time and removed on rotation or
// logout; a refresh token whose jti is absent has been revoked or rotated
// away. Access-token jtis work the other way around: present means
// blacklisted.
type Store interface {
	// PutRefresh marks a refresh token jti as valid for ttl.
	PutRefresh(ctx context.Context, jti string, ttl time.Duration) error

	// RefreshValid reports whether the refresh jti is still valid.
	RefreshValid(ctx context.Context, jti string) (bool, error)

	// RemoveRefresh invalidates a refresh jti. Removing an absent jti is
	// not an error, which keeps logout idempotent.
	RemoveRefresh(ctx context.Context, jti string) error

	// BlacklistAccess blocks an access jti for its remaining lifetime.
	BlacklistAccess(ctx context.Context, jti string, ttl time.Duration) error

	// AccessBlacklisted reports whether the access jti has been blocked.
	AccessBlacklisted(ctx context.Context, jti string) (bool, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
