package store

import (
	"fmt"

	"idchain/internal/crypto"
	"idchain/internal/domain"
	"idchain/internal/protocol/changehistory"
)

// reconcile decides whether incoming may replace the encoded history stored
// for id (nil when there is none). It returns the canonical encoding to
// write, or write=false when incoming adds nothing.
//
// Repositories do not re-verify signatures; callers hand in verified
// histories. They do check that the root names id so that one identity
// can never be filed under another's identifier.
func reconcile(id domain.Identifier, stored []byte, incoming domain.ChangeHistory) (encoded []byte, write bool, err error) {
	if len(incoming) == 0 {
		return nil, false, fmt.Errorf("%w: empty history for %s", domain.ErrInvalidChange, id)
	}
	if got := crypto.IdentifierOf(incoming[0]); got != id {
		return nil, false, fmt.Errorf("%w: history of %s filed under %s", domain.ErrIdentifierMismatch, got, id)
	}
	encoded, err = changehistory.Encode(incoming)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return encoded, true, nil
	}

	current, err := changehistory.Decode(stored)
	if err != nil {
		return nil, false, fmt.Errorf("stored record of %s: %w", id, err)
	}
	replace, err := changehistory.Reconcile(current, incoming)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", id, err)
	}
	return encoded, replace, nil
}

// decodeRecord decodes a stored history, naming id on failure.
func decodeRecord(id domain.Identifier, b []byte) (domain.ChangeHistory, error) {
	history, err := changehistory.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("stored record of %s: %w", id, err)
	}
	return history, nil
}

// notFound wraps domain.ErrNotFound with the identifier.
func notFound(id domain.Identifier) error {
	return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}
