package crypto

import (
	"crypto/ed25519"
	"crypto/rand"

	"idchain/internal/domain"
)

// GenerateEd25519 returns a new Ed25519 signing key and its public half.
func GenerateEd25519() (ed25519.PrivateKey, domain.PublicKey, error) {
	pk, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, domain.PublicKey{}, err
	}
	return sk, domain.PublicKey{Type: domain.KeyTypeEd25519, Data: []byte(pk)}, nil
}

// SignEd25519 signs msg with priv and returns the signature.
func SignEd25519(priv ed25519.PrivateKey, msg []byte) []byte {
	return ed25519.Sign(priv, msg)
}

// VerifyEd25519 verifies sig over msg with the raw public key pub.
func VerifyEd25519(pub []byte, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}
