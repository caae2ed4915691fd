package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tablechat/tablechat/internal/auth/domain"
)

type accountsRepo struct {
	db *sql.DB
}

const accountColumns = `id, email, nickname, password_hash, roles, provider, provider_subject, created_at, updated_at`

func (r *accountsRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	return scanAccount(row)
}

func (r *accountsRepo) GetByProvider(ctx context.Context, provider, subject string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE provider = ? AND provider_subject = ?`,
		provider, subject)
	return scanAccount(row)
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, nickname, password_hash, roles, provider, provider_subject, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.Nickname, a.PasswordHash, joinRoles(a.Roles),
		a.Provider, a.ProviderSubject, now, now)
	return mapConstraint(err)
}

func (r *accountsRepo) ExistsEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE email = ?`, email).Scan(&n)
	return n > 0, err
}

func (r *accountsRepo) ExistsNickname(ctx context.Context, nickname string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE nickname = ?`, nickname).Scan(&n)
	return n > 0, err
}

func (r *accountsRepo) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (domain.Account, error) {
	var a domain.Account
	var roles string
	err := s.Scan(
		&a.ID, &a.Email, &a.Nickname, &a.PasswordHash, &roles,
		&a.Provider, &a.ProviderSubject, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.Roles = splitRoles(roles)
	return a, nil
}

func joinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func splitRoles(roles string) []string {
	if roles == "" {
		return nil
	}
	return strings.Split(roles, ",")
}
