package crypto

import (
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/x509"
	"errors"
	"fmt"

	"idchain/internal/domain"
)

var (
	// ErrInvalidKey is returned for secrets or public keys of an unsupported type.
	ErrInvalidKey = errors.New("invalid key type")
)

// GenerateKey returns a fresh secret of the given type and its public half.
func GenerateKey(keyType domain.KeyType) (stdcrypto.Signer, domain.PublicKey, error) {
	switch keyType {
	case domain.KeyTypeEd25519:
		return GenerateEd25519()
	case domain.KeyTypeP256:
		return GenerateP256()
	default:
		return nil, domain.PublicKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, keyType)
	}
}

// PublicKeyOf returns the public half of secret in the form embedded in changes.
func PublicKeyOf(secret stdcrypto.Signer) (domain.PublicKey, error) {
	switch sk := secret.(type) {
	case ed25519.PrivateKey:
		return domain.PublicKey{
			Type: domain.KeyTypeEd25519,
			Data: []byte(sk.Public().(ed25519.PublicKey)),
		}, nil
	case *ecdsa.PrivateKey:
		return marshalP256Public(&sk.PublicKey)
	default:
		return domain.PublicKey{}, fmt.Errorf("%w: %T", ErrInvalidKey, secret)
	}
}

// Sign signs msg with secret using the scheme of its key type.
func Sign(secret stdcrypto.Signer, msg []byte) ([]byte, error) {
	switch sk := secret.(type) {
	case ed25519.PrivateKey:
		return SignEd25519(sk, msg), nil
	case *ecdsa.PrivateKey:
		return SignP256(sk, msg)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidKey, secret)
	}
}

// Verify reports whether sig is a valid signature of msg under pub.
// Unknown key types never verify.
func Verify(pub domain.PublicKey, msg, sig []byte) bool {
	switch pub.Type {
	case domain.KeyTypeEd25519:
		return VerifyEd25519(pub.Data, msg, sig)
	case domain.KeyTypeP256:
		return VerifyP256(pub.Data, msg, sig)
	default:
		return false
	}
}

// Verifier is the in-process domain.Verifier.
type Verifier struct{}

// Verify implements domain.Verifier.
func (Verifier) Verify(pub domain.PublicKey, msg, sig []byte) bool {
	return Verify(pub, msg, sig)
}

// MarshalSecret encodes secret as PKCS#8 DER.
func MarshalSecret(secret stdcrypto.Signer) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(secret)
	if err != nil {
		return nil, fmt.Errorf("marshalling key: %w", err)
	}
	return der, nil
}

// ParseSecret decodes a PKCS#8 DER secret produced by MarshalSecret.
func ParseSecret(der []byte) (stdcrypto.Signer, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	switch sk := key.(type) {
	case ed25519.PrivateKey:
		return sk, nil
	case *ecdsa.PrivateKey:
		if sk.Curve != elliptic.P256() {
			return nil, fmt.Errorf("%w: curve %s", ErrInvalidKey, sk.Curve.Params().Name)
		}
		return sk, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidKey, key)
	}
}

// Compile-time assertion that Verifier implements domain.Verifier.
var _ domain.Verifier = Verifier{}
