package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"idchain/internal/domain"
	"idchain/internal/protocol/changehistory"
)

// Keys mints locally authored changes with keys held in a vault.
type Keys struct {
	vault   domain.Vault
	keyType domain.KeyType
	now     func() time.Time
}

// KeysOption configures Keys.
type KeysOption func(*Keys)

// WithClock replaces time.Now as the source of change creation times.
func WithClock(now func() time.Time) KeysOption {
	return func(k *Keys) { k.now = now }
}

// NewKeys returns Keys generating keyType keys in vault. An empty keyType
// selects Ed25519.
func NewKeys(vault domain.Vault, keyType domain.KeyType, opts ...KeysOption) *Keys {
	if keyType == "" {
		keyType = domain.KeyTypeEd25519
	}
	k := &Keys{vault: vault, keyType: keyType, now: time.Now}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Vault returns the vault keys are generated in.
func (k *Keys) Vault() domain.Vault { return k.vault }

// CreateInitialKey builds a single-change identity. With an empty keyID a
// fresh key is generated, otherwise the existing vault key is reused. The
// root change is signed by the key it introduces.
func (k *Keys) CreateInitialKey(
	ctx context.Context,
	keyID domain.KeyID,
	attrs domain.Attributes,
) (*Identity, error) {
	if keyID == "" {
		var err error
		if keyID, err = k.vault.GenerateKey(ctx, k.keyType); err != nil {
			return nil, vaultError("generate key", err)
		}
	}
	pub, err := k.vault.PublicKey(ctx, keyID)
	if err != nil {
		return nil, vaultError("export public key", err)
	}

	root, err := changehistory.NewChange(
		changehistory.RootData(pub, attrs, k.now()),
		k.signer(ctx, keyID),
	)
	if err != nil {
		return nil, err
	}
	return ImportFromChangeHistory(nil, domain.ChangeHistory{root}, k.vault)
}

// RotateKey appends a change introducing a fresh key to identity. The new
// change is signed with the key currently authorised, which must be in the
// vault. Nil attrs carry the current attributes over. identity itself is
// not modified.
func (k *Keys) RotateKey(
	ctx context.Context,
	identity *Identity,
	attrs domain.Attributes,
) (*Identity, error) {
	current, err := k.GetSecretKey(ctx, identity)
	if err != nil {
		return nil, err
	}
	newKeyID, err := k.vault.GenerateKey(ctx, k.keyType)
	if err != nil {
		return nil, vaultError("generate key", err)
	}
	pub, err := k.vault.PublicKey(ctx, newKeyID)
	if err != nil {
		return nil, vaultError("export public key", err)
	}

	latest := identity.Latest()
	if attrs == nil {
		attrs = latest.Attributes
	}
	change, err := changehistory.NewChange(
		changehistory.NextData(latest, pub, attrs, k.now()),
		k.signer(ctx, current),
	)
	if err != nil {
		return nil, err
	}
	id := identity.Identifier()
	return ImportFromChangeHistory(&id, append(identity.ChangeHistory(), change), k.vault)
}

// GetSecretKey returns the vault handle of the identity's current key.
// It fails with domain.ErrKeyNotFound when the vault does not hold it.
func (k *Keys) GetSecretKey(ctx context.Context, identity *Identity) (domain.KeyID, error) {
	keyID, err := k.vault.KeyIDFor(ctx, identity.PublicKey())
	if errors.Is(err, domain.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: current key of %s", domain.ErrKeyNotFound, identity.Identifier())
	}
	if err != nil {
		return "", vaultError("look up key", err)
	}
	return keyID, nil
}

func (k *Keys) signer(ctx context.Context, keyID domain.KeyID) changehistory.SignFunc {
	return func(payload []byte) ([]byte, error) {
		sig, err := k.vault.Sign(ctx, keyID, payload)
		if err != nil {
			return nil, vaultError("sign", err)
		}
		return sig, nil
	}
}

// vaultError tags err as a vault failure while keeping it matchable.
func vaultError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrVault, err)
}
