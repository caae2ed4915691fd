package store

import (
	"context"
	"errors"

	"github.com/tablechat/tablechat/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Accounts interface {
	// GetByID returns an account by id.
	GetByID(ctx context.Context, id string) (domain.Account, error)

	// GetByEmail is used during local login.
	GetByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetByProvider looks up a federated account by its provider pair.
	GetByProvider(ctx context.Context, provider, subject string) (domain.Account, error)

	// Create inserts a new account (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email or nickname is taken.
	Create(ctx context.Context, a domain.Account) error

	// ExistsEmail reports whether any account uses the email.
	ExistsEmail(ctx context.Context, email string) (bool, error)

	// ExistsNickname reports whether any account uses the nickname.
	ExistsNickname(ctx context.Context, nickname string) (bool, error)

	// List returns all accounts ordered by creation date (newest first).
	List(ctx context.Context) ([]domain.Account, error)
}
