package vault

import (
	"context"
	stdcrypto "crypto"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"idchain/internal/crypto"
	"idchain/internal/domain"
)

// MemoryVault is an in-process vault.
type MemoryVault struct {
	mu      sync.RWMutex
	secrets map[domain.KeyID]stdcrypto.Signer
	byPub   map[string]domain.KeyID
}

// NewMemoryVault returns an empty vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{
		secrets: make(map[domain.KeyID]stdcrypto.Signer),
		byPub:   make(map[string]domain.KeyID),
	}
}

// GenerateKey creates a key of keyType and returns its handle.
func (v *MemoryVault) GenerateKey(ctx context.Context, keyType domain.KeyType) (domain.KeyID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	secret, pub, err := crypto.GenerateKey(keyType)
	if err != nil {
		return "", err
	}
	id := domain.KeyID(uuid.NewString())

	v.mu.Lock()
	defer v.mu.Unlock()
	v.secrets[id] = secret
	v.byPub[pubIndex(pub)] = id
	return id, nil
}

// Sign signs msg with the secret behind keyID.
func (v *MemoryVault) Sign(ctx context.Context, keyID domain.KeyID, msg []byte) ([]byte, error) {
	secret, err := v.secret(ctx, keyID)
	if err != nil {
		return nil, err
	}
	return crypto.Sign(secret, msg)
}

// PublicKey returns the public half of keyID.
func (v *MemoryVault) PublicKey(ctx context.Context, keyID domain.KeyID) (domain.PublicKey, error) {
	secret, err := v.secret(ctx, keyID)
	if err != nil {
		return domain.PublicKey{}, err
	}
	return crypto.PublicKeyOf(secret)
}

// Verify reports whether sig is valid for msg under pub.
func (v *MemoryVault) Verify(ctx context.Context, pub domain.PublicKey, msg, sig []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return crypto.Verify(pub, msg, sig), nil
}

// KeyIDFor returns the handle of the secret matching pub.
func (v *MemoryVault) KeyIDFor(ctx context.Context, pub domain.PublicKey) (domain.KeyID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	id, ok := v.byPub[pubIndex(pub)]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return id, nil
}

func (v *MemoryVault) secret(ctx context.Context, keyID domain.KeyID) (stdcrypto.Signer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	secret, ok := v.secrets[keyID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrKeyNotFound, keyID)
	}
	return secret, nil
}

// pubIndex is the lookup key of a public key.
func pubIndex(pub domain.PublicKey) string {
	return string(pub.Type) + ":" + string(pub.Data)
}

var _ domain.Vault = (*MemoryVault)(nil)
