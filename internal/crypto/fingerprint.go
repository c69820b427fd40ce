package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"idchain/internal/domain"
)

// Digest returns the SHA-256 digest of b.
func Digest(b []byte) [sha256.Size]byte {
	return sha256.Sum256(b)
}

// HashChangeData returns the ChangeHash of an encoded ChangeData: its
// SHA-256 digest truncated to 20 bytes.
func HashChangeData(data []byte) domain.ChangeHash {
	sum := Digest(data)
	var h domain.ChangeHash
	copy(h[:], sum[:domain.IdentifierSize])
	return h
}

// IdentifierOf derives the Identifier named by a root change.
func IdentifierOf(root domain.Change) domain.Identifier {
	return domain.Identifier(HashChangeData(root.Data))
}

// Fingerprint returns a short hex fingerprint of a public key.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:10])
}
