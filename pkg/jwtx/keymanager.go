package jwtx

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/tablechat/tablechat/pkg/cryptox"
)

// KeyManager manages JWT signing and verification keys for an instance.
// It wires ephemeral Ed25519 key generation, signing, verification, and
// the KeySet used for JWKS publishing.
//
// Multiple signing keys are kept for availability and load distribution.
// Keys are selected randomly for signing operations.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	mu      sync.RWMutex
	signers []Signer
}

// KeyManagerOptions configures the KeyManager.
type KeyManagerOptions struct {
	// Issuer is the issuer claim (iss) that will be validated in tokens.
	Issuer string

	// Audience is the list of audience values (aud) that will be validated.
	// Empty slice means no audience validation.
	Audience []string

	// NumKeys specifies how many signing keys to generate.
	// Defaults to 3 if not specified. Minimum is 1, maximum is 10.
	NumKeys int
}

// NewEphemeralKeyManager creates a new KeyManager with ephemeral Ed25519
// keys. The keys are generated on the fly and only exist in memory - they
// are never persisted to disk. This means all tokens become invalid when
// the service restarts, which is useful for stateless key rotation.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	numKeys := opts.NumKeys
	if numKeys <= 0 {
		numKeys = 3
	}
	if numKeys > 10 {
		numKeys = 10
	}

	keyset := NewKeySet()
	signers := make([]Signer, 0, numKeys)

	for i := 0; i < numKeys; i++ {
		keyID, err := generateRandomKeyID()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate key ID: %w", err)
		}

		pemBytes, err := cryptox.GenerateEd25519PEM()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate key %d: %w", i+1, err)
		}

		signer, err := NewSignerEdDSA(keyID, pemBytes)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to build signer %d: %w", i+1, err)
		}

		signers = append(signers, signer)

		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add signer %d to keyset: %w", i+1, err)
		}
	}

	return &KeyManager{
		Verifier: NewCommonEdDSA(keyset, opts.Issuer, opts.Audience),
		KeySet:   keyset,
		signers:  signers,
	}, nil
}

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

// GetSigner returns a randomly selected signer from the available signing
// keys, distributing signing load across them.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if len(km.signers) == 0 {
		return nil
	}
	if len(km.signers) == 1 {
		return km.signers[0]
	}
	return km.signers[rand.IntN(len(km.signers))]
}

// NumSigners returns the number of active signing keys.
func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// AddSigner adds a new signing key to the KeyManager. The key is added to
// both the active signers list and the KeySet. Thread-safe, usable for
// runtime key rotation.
func (km *KeyManager) AddSigner(signer Signer) error {
	if signer == nil {
		return fmt.Errorf("signer cannot be nil")
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.KeySet.AddSigner(signer); err != nil {
		return fmt.Errorf("failed to add signer to keyset: %w", err)
	}
	km.signers = append(km.signers, signer)
	return nil
}

// generateRandomKeyID creates a random key identifier.
// Format: "tablechat-{random-token}" with a 128-bit secure token.
func generateRandomKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("failed to generate random key ID: %w", err)
	}
	return fmt.Sprintf("tablechat-%s", token), nil
}
