package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"idchain/internal/domain"
)

// GenerateP256 returns a new ECDSA P-256 signing key and its public half.
// The public key is carried as PKIX DER.
func GenerateP256() (*ecdsa.PrivateKey, domain.PublicKey, error) {
	sk, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, domain.PublicKey{}, err
	}
	pub, err := marshalP256Public(&sk.PublicKey)
	if err != nil {
		return nil, domain.PublicKey{}, err
	}
	return sk, pub, nil
}

// SignP256 hashes msg with SHA-256 and returns an ASN.1 ECDSA signature.
func SignP256(priv *ecdsa.PrivateKey, msg []byte) ([]byte, error) {
	sum := sha256.Sum256(msg)
	return ecdsa.SignASN1(rand.Reader, priv, sum[:])
}

// VerifyP256 verifies an ASN.1 signature over SHA-256(msg) with a PKIX DER key.
func VerifyP256(pub []byte, msg, sig []byte) bool {
	key, err := parseP256Public(pub)
	if err != nil {
		return false
	}
	sum := sha256.Sum256(msg)
	return ecdsa.VerifyASN1(key, sum[:], sig)
}

func marshalP256Public(pk *ecdsa.PublicKey) (domain.PublicKey, error) {
	der, err := x509.MarshalPKIXPublicKey(pk)
	if err != nil {
		return domain.PublicKey{}, fmt.Errorf("marshalling public key: %w", err)
	}
	return domain.PublicKey{Type: domain.KeyTypeP256, Data: der}, nil
}

func parseP256Public(der []byte) (*ecdsa.PublicKey, error) {
	pk, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	key, ok := pk.(*ecdsa.PublicKey)
	if !ok || key.Curve != elliptic.P256() {
		return nil, ErrInvalidKey
	}
	return key, nil
}
