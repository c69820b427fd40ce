package identity

import (
	"fmt"

	"idchain/internal/domain"
	"idchain/internal/protocol/changehistory"
)

// Identity pairs an Identifier with its verified change history and the
// vault holding (or not) its secret keys.
//
// An Identity can only be obtained through verification, so its history is
// always valid. The history is owned by the Identity; accessors hand out
// copies. The vault is shared.
type Identity struct {
	identifier domain.Identifier
	history    domain.ChangeHistory
	changes    []domain.VerifiedChange
	vault      domain.Vault
}

// Import decodes and verifies an encoded change history and binds vault to
// the result. When expected is not nil the history must name that
// identifier.
func Import(expected *domain.Identifier, data []byte, vault domain.Vault) (*Identity, error) {
	verified, err := changehistory.Import(expected, data, nil)
	if err != nil {
		return nil, err
	}
	return fromVerified(verified, vault), nil
}

// ImportFromChangeHistory is Import for an already decoded history, such as
// one loaded from a repository. The full chain is verified again.
func ImportFromChangeHistory(
	expected *domain.Identifier,
	history domain.ChangeHistory,
	vault domain.Vault,
) (*Identity, error) {
	verified, err := changehistory.Verify(expected, history, nil)
	if err != nil {
		return nil, err
	}
	return fromVerified(verified, vault), nil
}

func fromVerified(v changehistory.Verified, vault domain.Vault) *Identity {
	return &Identity{
		identifier: v.Identifier,
		history:    v.History,
		changes:    v.Changes,
		vault:      vault,
	}
}

// Identifier returns the identity's identifier.
func (i *Identity) Identifier() domain.Identifier { return i.identifier }

// ChangeHistory returns a copy of the verified history.
func (i *Identity) ChangeHistory() domain.ChangeHistory { return i.history.Clone() }

// Changes returns the decoded view of each change, root first.
func (i *Identity) Changes() []domain.VerifiedChange {
	out := make([]domain.VerifiedChange, len(i.changes))
	for n, c := range i.changes {
		c.PublicKey = c.PublicKey.Clone()
		c.Attributes = c.Attributes.Clone()
		out[n] = c
	}
	return out
}

// Latest returns the most recent change.
func (i *Identity) Latest() domain.VerifiedChange {
	c := i.changes[len(i.changes)-1]
	c.PublicKey = c.PublicKey.Clone()
	c.Attributes = c.Attributes.Clone()
	return c
}

// PublicKey returns the currently authorised public key.
func (i *Identity) PublicKey() domain.PublicKey { return i.Latest().PublicKey }

// Attributes returns the attributes of the most recent change.
func (i *Identity) Attributes() domain.Attributes { return i.Latest().Attributes }

// Export returns the canonical encoding of the history.
func (i *Identity) Export() ([]byte, error) {
	return changehistory.Encode(i.history)
}

// Vault returns the shared vault handle.
func (i *Identity) Vault() domain.Vault { return i.vault }

// Equal reports whether both identities have the same identifier and the
// same history. Vault handles are not compared.
func (i *Identity) Equal(o *Identity) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.identifier == o.identifier && i.history.Equal(o.history)
}

// String returns the identifier and history length.
func (i *Identity) String() string {
	return fmt.Sprintf("%s (%d changes)", i.identifier, len(i.history))
}
