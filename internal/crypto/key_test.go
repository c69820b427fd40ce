package crypto_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"idchain/internal/crypto"
	"idchain/internal/domain"
)

func TestSignVerify(t *testing.T) {
	for _, keyType := range []domain.KeyType{domain.KeyTypeEd25519, domain.KeyTypeP256} {
		t.Run(keyType.String(), func(t *testing.T) {
			a := require.New(t)
			msg := []byte("Make the world a better place")

			secret, pub, err := crypto.GenerateKey(keyType)
			a.NoError(err)
			a.Equal(keyType, pub.Type)

			derived, err := crypto.PublicKeyOf(secret)
			a.NoError(err)
			a.True(pub.Equal(derived))

			sig, err := crypto.Sign(secret, msg)
			a.NoError(err)

			t.Run("valid signature", func(t *testing.T) {
				require.True(t, crypto.Verify(pub, msg, sig))
				require.True(t, crypto.Verifier{}.Verify(pub, msg, sig))
			})
			t.Run("invalid signature", func(t *testing.T) {
				sig := slices.Clone(sig)
				sig[len(sig)-1] ^= 0xFF
				require.False(t, crypto.Verify(pub, msg, sig))
			})
			t.Run("invalid message", func(t *testing.T) {
				msg := append(slices.Clone(msg), '!')
				require.False(t, crypto.Verify(pub, msg, sig))
			})
			t.Run("invalid public key", func(t *testing.T) {
				_, another, err := crypto.GenerateKey(keyType)
				require.NoError(t, err)
				require.False(t, crypto.Verify(another, msg, sig))
			})
			t.Run("secret round trip", func(t *testing.T) {
				der, err := crypto.MarshalSecret(secret)
				require.NoError(t, err)
				parsed, err := crypto.ParseSecret(der)
				require.NoError(t, err)
				again, err := crypto.PublicKeyOf(parsed)
				require.NoError(t, err)
				require.True(t, pub.Equal(again))
			})
		})
	}
}

func TestVerify_RejectsMismatchedType(t *testing.T) {
	secret, pub, err := crypto.GenerateKey(domain.KeyTypeEd25519)
	require.NoError(t, err)
	sig, err := crypto.Sign(secret, []byte("m"))
	require.NoError(t, err)

	pub.Type = domain.KeyTypeP256
	require.False(t, crypto.Verify(pub, []byte("m"), sig))
	pub.Type = "unknown"
	require.False(t, crypto.Verify(pub, []byte("m"), sig))
}

func TestGenerateKey_UnknownType(t *testing.T) {
	_, _, err := crypto.GenerateKey("rsa")
	require.ErrorIs(t, err, crypto.ErrInvalidKey)
}

func TestIdentifierOf(t *testing.T) {
	root := domain.Change{Data: []byte("root")}
	id := crypto.IdentifierOf(root)
	h := crypto.HashChangeData(root.Data)
	require.Equal(t, h[:], id[:])

	sum := crypto.Digest(root.Data)
	require.Equal(t, sum[:domain.IdentifierSize], id[:])
	require.Len(t, crypto.Fingerprint([]byte("pub")), 20)
}
