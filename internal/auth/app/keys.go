package app

import (
	"fmt"
	"log/slog"

	"github.com/tablechat/tablechat/pkg/jwtx"
)

// InitAuthKeys creates the signing key manager. Keys are generated on
// startup and held only in memory, so every restart invalidates all
// outstanding tokens.
//
// By default, generates 3 Ed25519 signing keys with random identifiers for
// load distribution across signers. Use AUTH_NUM_KEYS to customize.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	keyManager, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:   cfg.Issuer,
		Audience: nil, // No audience validation
		NumKeys:  cfg.NumKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
	}

	logger.Info("generated ephemeral signing keys",
		"num_keys", keyManager.NumSigners(),
		"issuer", cfg.Issuer,
	)
	logger.Warn("all existing tokens are now invalid due to key rotation on startup")

	return keyManager, nil
}
