package interfaces

import (
	"context"

	domaintypes "idchain/internal/domain/types"
)

// Vault is the secure key-storage capability. Secret material never leaves
// it; callers hold KeyID handles. Implementations are shared between
// identities and must be safe for concurrent use.
type Vault interface {
	GenerateKey(ctx context.Context, keyType domaintypes.KeyType) (domaintypes.KeyID, error)
	Sign(ctx context.Context, keyID domaintypes.KeyID, msg []byte) ([]byte, error)
	PublicKey(ctx context.Context, keyID domaintypes.KeyID) (domaintypes.PublicKey, error)
	Verify(ctx context.Context, pub domaintypes.PublicKey, msg, sig []byte) (bool, error)
	// KeyIDFor returns the handle holding the secret for pub, or ErrKeyNotFound.
	KeyIDFor(ctx context.Context, pub domaintypes.PublicKey) (domaintypes.KeyID, error)
}

// Verifier checks signatures without I/O.
type Verifier interface {
	Verify(pub domaintypes.PublicKey, msg, sig []byte) bool
}
