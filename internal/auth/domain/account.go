package domain

import "time"

// Role strings carried in access-token claims and checked by the
// authorization middleware.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Account is a registered member. Local accounts carry an argon2 password
// hash; federated accounts carry the provider pair instead and have no
// password.
type Account struct {
	ID           string
	Email        string
	Nickname     string
	PasswordHash string // argon2 encoded, empty for federated accounts
	Roles        []string

	// Provider and ProviderSubject identify a federated account, e.g.
	// ("google", "118200..."). Both empty for local accounts.
	Provider        string
	ProviderSubject string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFederated reports whether the account was auto-provisioned through a
// federated login rather than local registration.
func (a Account) IsFederated() bool {
	return a.Provider != ""
}
