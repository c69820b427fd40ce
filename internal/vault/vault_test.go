package vault_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idchain/internal/domain"
	"idchain/internal/vault"
)

var fastScrypt = vault.WithScryptParams(vault.ScryptParams{N: 1 << 4, R: 8, P: 1})

func backends(t *testing.T) map[string]domain.Vault {
	t.Helper()
	fv, err := vault.OpenFileVault(t.TempDir(), "correct horse", fastScrypt)
	require.NoError(t, err)
	return map[string]domain.Vault{
		"memory": vault.NewMemoryVault(),
		"file":   fv,
	}
}

func TestVault_Contract(t *testing.T) {
	ctx := context.Background()
	for name, v := range backends(t) {
		for _, keyType := range []domain.KeyType{domain.KeyTypeEd25519, domain.KeyTypeP256} {
			t.Run(name+"/"+keyType.String(), func(t *testing.T) {
				id, err := v.GenerateKey(ctx, keyType)
				require.NoError(t, err)
				require.NotEmpty(t, id)

				pub, err := v.PublicKey(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, keyType, pub.Type)

				msg := []byte("payload")
				sig, err := v.Sign(ctx, id, msg)
				require.NoError(t, err)

				ok, err := v.Verify(ctx, pub, msg, sig)
				require.NoError(t, err)
				assert.True(t, ok)

				ok, err = v.Verify(ctx, pub, []byte("other"), sig)
				require.NoError(t, err)
				assert.False(t, ok)

				got, err := v.KeyIDFor(ctx, pub)
				require.NoError(t, err)
				assert.Equal(t, id, got)
			})
		}

		t.Run(name+"/unknown handle", func(t *testing.T) {
			_, err := v.Sign(ctx, "00000000-0000-0000-0000-000000000000", []byte("x"))
			require.ErrorIs(t, err, domain.ErrKeyNotFound)
			_, err = v.PublicKey(ctx, "../../etc/passwd")
			require.ErrorIs(t, err, domain.ErrKeyNotFound)
			_, err = v.KeyIDFor(ctx, domain.PublicKey{Type: domain.KeyTypeEd25519, Data: make([]byte, 32)})
			require.ErrorIs(t, err, domain.ErrKeyNotFound)
		})

		t.Run(name+"/unsupported key type", func(t *testing.T) {
			_, err := v.GenerateKey(ctx, "rsa")
			require.Error(t, err)
		})

		t.Run(name+"/cancelled", func(t *testing.T) {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := v.GenerateKey(cctx, domain.KeyTypeEd25519)
			require.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestFileVault_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	v, err := vault.OpenFileVault(dir, "pw", fastScrypt)
	require.NoError(t, err)
	id, err := v.GenerateKey(ctx, domain.KeyTypeEd25519)
	require.NoError(t, err)
	pub, err := v.PublicKey(ctx, id)
	require.NoError(t, err)
	require.NoError(t, v.Close())

	raw, err := os.ReadFile(filepath.Join(dir, string(id)+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"key_id"`)

	reopened, err := vault.OpenFileVault(dir, "pw")
	require.NoError(t, err)
	got, err := reopened.KeyIDFor(ctx, pub)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	sig, err := reopened.Sign(ctx, id, []byte("m"))
	require.NoError(t, err)
	ok, err := reopened.Verify(ctx, pub, []byte("m"), sig)
	require.NoError(t, err)
	assert.True(t, ok)

	wrong, err := vault.OpenFileVault(dir, "not pw")
	require.NoError(t, err, "public index needs no passphrase")
	_, err = wrong.Sign(ctx, id, []byte("m"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestFileVault_UseAfterClose(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	v, err := vault.OpenFileVault(dir, "secret", fastScrypt)
	require.NoError(t, err)
	id, err := v.GenerateKey(ctx, domain.KeyTypeEd25519)
	require.NoError(t, err)
	_, err = v.Sign(ctx, id, []byte("m"))
	require.NoError(t, err)
	require.NoError(t, v.Close())

	_, err = v.GenerateKey(ctx, domain.KeyTypeEd25519)
	require.ErrorIs(t, err, vault.ErrClosed)
	_, err = v.Sign(ctx, id, []byte("m"))
	require.ErrorIs(t, err, vault.ErrClosed, "cached signer is forgotten")

	_, err = v.PublicKey(ctx, id)
	require.NoError(t, err, "public lookups survive Close")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no key sealed after Close")

	zeroed, err := vault.OpenFileVault(dir, strings.Repeat("\x00", len("secret")))
	require.NoError(t, err)
	_, err = zeroed.Sign(ctx, id, []byte("m"))
	require.Error(t, err, "wiped passphrase does not unseal")
}

func TestFileVault_MissingPassphrase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	v, err := vault.OpenFileVault(dir, "pw", fastScrypt)
	require.NoError(t, err)
	id, err := v.GenerateKey(ctx, domain.KeyTypeEd25519)
	require.NoError(t, err)
	pub, err := v.PublicKey(ctx, id)
	require.NoError(t, err)

	locked, err := vault.OpenFileVault(dir, "")
	require.NoError(t, err)

	got, err := locked.KeyIDFor(ctx, pub)
	require.NoError(t, err, "public lookups need no passphrase")
	assert.Equal(t, id, got)

	_, err = locked.Sign(ctx, id, []byte("m"))
	require.ErrorIs(t, err, vault.ErrMissingPassphrase)
	_, err = locked.GenerateKey(ctx, domain.KeyTypeEd25519)
	require.ErrorIs(t, err, vault.ErrMissingPassphrase)
}

func TestFileVault_TamperedRecord(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	v, err := vault.OpenFileVault(dir, "pw", fastScrypt)
	require.NoError(t, err)
	a, err := v.GenerateKey(ctx, domain.KeyTypeEd25519)
	require.NoError(t, err)
	b, err := v.GenerateKey(ctx, domain.KeyTypeEd25519)
	require.NoError(t, err)
	require.NoError(t, v.Close())

	// Swap b's sealed secret into a's record under a's id: the key id is
	// bound as associated data, so it must fail to open.
	rawA, err := os.ReadFile(filepath.Join(dir, string(a)+".json"))
	require.NoError(t, err)
	rawB, err := os.ReadFile(filepath.Join(dir, string(b)+".json"))
	require.NoError(t, err)
	swapped := []byte(strings.ReplaceAll(string(rawB), string(b), string(a)))
	require.NotEqual(t, rawA, swapped)
	require.NoError(t, os.WriteFile(filepath.Join(dir, string(a)+".json"), swapped, 0o600))

	reopened, err := vault.OpenFileVault(dir, "pw")
	require.NoError(t, err)
	_, err = reopened.Sign(ctx, a, []byte("m"))
	require.Error(t, err)
}
