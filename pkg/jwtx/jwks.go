package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
)

// JWK represents a public key in JSON Web Key format (RFC 7517).
// Only Ed25519 ("OKP") keys are issued here; the shape stays
// algorithm-neutral so other key types can slot in later.
type JWK struct {
	Kty string `json:"kty"`           // key type: "OKP"
	Use string `json:"use,omitempty"` // what we use it for: "sig"
	Alg string `json:"alg,omitempty"` // algorithm: "EdDSA"
	Kid string `json:"kid,omitempty"` // key ID

	Crv string `json:"crv,omitempty"` // curve: "Ed25519"
	X   string `json:"x,omitempty"`   // base64url encoded public key
}

// JWKS is a JSON Web Key Set (RFC 7517).
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// NewEd25519JWK builds a JWK for an Ed25519 public key.
// Ed25519 keys use the "OKP" (Octet Key Pair) key type.
func NewEd25519JWK(kid, use, alg string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP",
		Use: use,
		Alg: alg,
		Kid: kid,
		Crv: "Ed25519",
		X:   base64.RawURLEncoding.EncodeToString(pub),
	}
}

// PEM converts the JWK to PEM format for use with tools like jwt.io.
func (j JWK) PEM() (string, error) {
	if j.Kty != "OKP" {
		return "", errors.New("jwtx: unsupported kty " + j.Kty)
	}
	if j.Crv != "Ed25519" {
		return "", errors.New("jwtx: unsupported OKP curve " + j.Crv)
	}

	xb, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return "", err
	}
	if len(xb) != ed25519.PublicKeySize {
		return "", errors.New("jwtx: invalid Ed25519 public key size")
	}

	derBytes, err := x509.MarshalPKIXPublicKey(ed25519.PublicKey(xb))
	if err != nil {
		return "", err
	}

	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: derBytes,
	})), nil
}
