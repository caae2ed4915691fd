// Package oidcx is a thin OpenID Connect relying-party layer. It wraps
// provider discovery, the authorization-code redirect, and code exchange
// plus id_token verification, and hands back a normalized Profile the
// identity layer can provision accounts from.
package oidcx

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// ErrHandshake covers every upstream failure during the callback leg:
// code exchange, missing id_token, or id_token verification. Callers treat
// them all the same (the login attempt failed), so the detail stays wrapped.
var ErrHandshake = errors.New("oidcx: federated handshake failed")

// Config describes one upstream OpenID Connect provider.
type Config struct {
	// Name identifies the provider in our own records, e.g. "google".
	Name string

	// IssuerURL is the provider's issuer for discovery, e.g.
	// "https://accounts.google.com".
	IssuerURL string

	ClientID     string
	ClientSecret string

	// RedirectURL is our callback, registered with the provider.
	RedirectURL string

	// Scopes requested at authorization. Must include "openid".
	Scopes []string
}

// Validate checks the config before discovery is attempted.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("oidcx: provider name is required")
	}
	if c.IssuerURL == "" {
		return fmt.Errorf("oidcx: issuer_url is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("oidcx: client_id is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("oidcx: client_secret is required")
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("oidcx: redirect_url is required")
	}
	if !slices.Contains(c.Scopes, "openid") {
		return fmt.Errorf("oidcx: 'openid' scope is required")
	}
	return nil
}

// Profile is the normalized identity extracted from a verified id_token.
type Profile struct {
	// Provider is the Config.Name of the provider that authenticated
	// the user.
	Provider string

	// Subject is the provider-scoped stable user id (the "sub" claim).
	Subject string

	Email         string
	EmailVerified bool

	// Name is the display name, empty if the provider didn't share one.
	Name string
}

// RelyingParty performs the authorization-code flow against one provider.
type RelyingParty struct {
	name         string
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
}

// NewRelyingParty discovers the provider's endpoints and builds the
// verifier. The context bounds the discovery request.
func NewRelyingParty(ctx context.Context, cfg Config) (*RelyingParty, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidcx: discover provider %q: %w", cfg.Name, err)
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
	}

	return &RelyingParty{
		name:         cfg.Name,
		verifier:     verifier,
		oauth2Config: oauth2Config,
	}, nil
}

// Name returns the provider's configured name.
func (rp *RelyingParty) Name() string { return rp.name }

// AuthCodeURL builds the provider authorization URL for the given state.
// The caller is responsible for binding the state to the user agent.
func (rp *RelyingParty) AuthCodeURL(state string) string {
	return rp.oauth2Config.AuthCodeURL(state)
}

// Exchange redeems the authorization code, verifies the id_token, and
// extracts the identity profile. Every upstream failure comes back wrapped
// in ErrHandshake.
func (rp *RelyingParty) Exchange(ctx context.Context, code string) (Profile, error) {
	if code == "" {
		return Profile{}, fmt.Errorf("%w: missing authorization code", ErrHandshake)
	}

	oauth2Token, err := rp.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: code exchange: %v", ErrHandshake, err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return Profile{}, fmt.Errorf("%w: missing id_token in response", ErrHandshake)
	}

	idToken, err := rp.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: id_token verification: %v", ErrHandshake, err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Profile{}, fmt.Errorf("%w: parse claims: %v", ErrHandshake, err)
	}

	if idToken.Subject == "" {
		return Profile{}, fmt.Errorf("%w: missing subject in id_token", ErrHandshake)
	}
	if claims.Email == "" {
		return Profile{}, fmt.Errorf("%w: missing email in id_token", ErrHandshake)
	}

	return Profile{
		Provider:      rp.name,
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}
