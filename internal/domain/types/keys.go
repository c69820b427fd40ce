package types

import (
	"bytes"
	"fmt"
	"strings"
)

// KeyType names a signature scheme supported for identity keys.
type KeyType string

const (
	// KeyTypeEd25519 is EdDSA over Curve25519; public keys are the raw 32 bytes.
	KeyTypeEd25519 KeyType = "ed25519"
	// KeyTypeP256 is ECDSA over NIST P-256 with SHA-256; public keys are PKIX DER.
	KeyTypeP256 KeyType = "p256"
)

// String returns the string form of the key type.
func (t KeyType) String() string { return string(t) }

// ParseKeyType accepts the names used in configuration and on the command line.
func ParseKeyType(s string) (KeyType, error) {
	switch KeyType(strings.ToLower(strings.TrimSpace(s))) {
	case KeyTypeEd25519:
		return KeyTypeEd25519, nil
	case KeyTypeP256:
		return KeyTypeP256, nil
	default:
		return "", fmt.Errorf("unsupported key type %q", s)
	}
}

// KeyID is an opaque vault handle for a secret key.
type KeyID string

// String returns the string form of the key handle.
func (id KeyID) String() string { return string(id) }

// PublicKey is the public half of an identity key as embedded in a change.
type PublicKey struct {
	_    struct{} `cbor:",toarray"`
	Type KeyType  `json:"type"`
	Data []byte   `json:"data"`
}

// Equal reports whether p and o denote the same key.
func (p PublicKey) Equal(o PublicKey) bool {
	return p.Type == o.Type && bytes.Equal(p.Data, o.Data)
}

// Clone returns a deep copy of p.
func (p PublicKey) Clone() PublicKey {
	return PublicKey{Type: p.Type, Data: bytes.Clone(p.Data)}
}
