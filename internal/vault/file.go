package vault

import (
	"context"
	stdcrypto "crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"idchain/internal/crypto"
	"idchain/internal/domain"
	"idchain/internal/util/fsutil"
	"idchain/internal/util/memzero"
)

// ErrMissingPassphrase is returned when a FileVault opened without a
// passphrase is asked to create or use a secret.
var ErrMissingPassphrase = errors.New("vault passphrase is required")

// ErrClosed is returned when a closed FileVault is asked to create or use
// a secret.
var ErrClosed = errors.New("vault is closed")

// keyRecord is the on-disk JSON document of one key.
type keyRecord struct {
	V         int              `json:"v"`
	KeyID     domain.KeyID     `json:"key_id"`
	PublicKey domain.PublicKey `json:"public_key"`
	Secret    envelope         `json:"secret"`
}

// FileVault stores each key as <dir>/<key id>.json with the PKCS#8 secret
// sealed under a passphrase-derived key. Unsealed secrets are cached for the
// lifetime of the vault.
type FileVault struct {
	dir        string
	passphrase []byte
	params     ScryptParams

	mu     sync.Mutex
	closed bool
	byPub  map[string]domain.KeyID
	signer map[domain.KeyID]stdcrypto.Signer
}

// FileVaultOption configures a FileVault.
type FileVaultOption func(*FileVault)

// WithScryptParams overrides the key-derivation cost for newly sealed keys.
func WithScryptParams(p ScryptParams) FileVaultOption {
	return func(v *FileVault) { v.params = p }
}

// OpenFileVault opens (creating if needed) the vault directory and indexes
// the public keys it holds. Secrets are only unsealed when first used, so a
// vault opened with an empty passphrase still answers public key lookups.
func OpenFileVault(dir, passphrase string, opts ...FileVaultOption) (*FileVault, error) {
	if err := fsutil.EnsureDir(dir); err != nil {
		return nil, err
	}
	v := &FileVault{
		dir:        dir,
		passphrase: []byte(passphrase),
		params:     DefaultScryptParams(),
		byPub:      make(map[string]domain.KeyID),
		signer:     make(map[domain.KeyID]stdcrypto.Signer),
	}
	for _, o := range opts {
		o(v)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		rec, ok, err := v.readRecord(domain.KeyID(strings.TrimSuffix(name, ".json")))
		if err != nil {
			return nil, err
		}
		if ok {
			v.byPub[pubIndex(rec.PublicKey)] = rec.KeyID
		}
	}
	return v, nil
}

// GenerateKey creates a key of keyType, seals it to disk and returns its handle.
func (v *FileVault) GenerateKey(ctx context.Context, keyType domain.KeyType) (domain.KeyID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return "", ErrClosed
	}
	if len(v.passphrase) == 0 {
		return "", ErrMissingPassphrase
	}
	secret, pub, err := crypto.GenerateKey(keyType)
	if err != nil {
		return "", err
	}
	der, err := crypto.MarshalSecret(secret)
	if err != nil {
		return "", err
	}
	defer memzero.Zero(der)

	id := domain.KeyID(uuid.NewString())
	env, err := seal(v.passphrase, der, []byte(id), v.params)
	if err != nil {
		return "", err
	}
	rec := keyRecord{V: envelopeFormatVersion, KeyID: id, PublicKey: pub, Secret: env}
	if err := fsutil.WriteJSON(v.path(id), rec, fsutil.FileMode); err != nil {
		return "", err
	}
	v.byPub[pubIndex(pub)] = id
	v.signer[id] = secret
	return id, nil
}

// Sign signs msg with the secret behind keyID, unsealing it on first use.
func (v *FileVault) Sign(ctx context.Context, keyID domain.KeyID, msg []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	secret, err := v.unseal(keyID)
	if err != nil {
		return nil, err
	}
	return crypto.Sign(secret, msg)
}

// PublicKey returns the public half of keyID without unsealing it.
func (v *FileVault) PublicKey(ctx context.Context, keyID domain.KeyID) (domain.PublicKey, error) {
	if err := ctx.Err(); err != nil {
		return domain.PublicKey{}, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	rec, ok, err := v.readRecord(keyID)
	if err != nil {
		return domain.PublicKey{}, err
	}
	if !ok {
		return domain.PublicKey{}, fmt.Errorf("%w: %s", domain.ErrKeyNotFound, keyID)
	}
	return rec.PublicKey, nil
}

// Verify reports whether sig is valid for msg under pub.
func (v *FileVault) Verify(ctx context.Context, pub domain.PublicKey, msg, sig []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return crypto.Verify(pub, msg, sig), nil
}

// KeyIDFor returns the handle of the secret matching pub.
func (v *FileVault) KeyIDFor(ctx context.Context, pub domain.PublicKey) (domain.KeyID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	id, ok := v.byPub[pubIndex(pub)]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return id, nil
}

// Close wipes the passphrase and forgets unsealed secrets. Public lookups
// keep working; GenerateKey and Sign fail with ErrClosed.
func (v *FileVault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	memzero.Zero(v.passphrase)
	v.passphrase = nil
	clear(v.signer)
	v.closed = true
	return nil
}

func (v *FileVault) unseal(keyID domain.KeyID) (stdcrypto.Signer, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, ErrClosed
	}
	if s, ok := v.signer[keyID]; ok {
		return s, nil
	}
	rec, ok, err := v.readRecord(keyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrKeyNotFound, keyID)
	}
	if len(v.passphrase) == 0 {
		return nil, ErrMissingPassphrase
	}
	der, err := open(v.passphrase, rec.Secret, []byte(rec.KeyID))
	if err != nil {
		return nil, fmt.Errorf("unsealing key %s: %w", keyID, err)
	}
	defer memzero.Zero(der)

	secret, err := crypto.ParseSecret(der)
	if err != nil {
		return nil, err
	}
	v.signer[keyID] = secret
	return secret, nil
}

// readRecord loads the record of keyID. Handles that are not UUIDs cannot
// name a record and report ok=false.
func (v *FileVault) readRecord(keyID domain.KeyID) (keyRecord, bool, error) {
	if _, err := uuid.Parse(string(keyID)); err != nil {
		return keyRecord{}, false, nil
	}
	var rec keyRecord
	ok, err := fsutil.ReadJSON(v.path(keyID), &rec)
	if err != nil || !ok {
		return keyRecord{}, false, err
	}
	if rec.KeyID != keyID {
		return keyRecord{}, false, fmt.Errorf("key record %s names key %s", keyID, rec.KeyID)
	}
	return rec, true, nil
}

func (v *FileVault) path(keyID domain.KeyID) string {
	return filepath.Join(v.dir, string(keyID)+".json")
}

var _ domain.Vault = (*FileVault)(nil)
