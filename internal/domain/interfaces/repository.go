package interfaces

import (
	"context"

	domaintypes "idchain/internal/domain/types"
)

// IdentitiesRepository maps an Identifier to the latest accepted ChangeHistory.
//
// UpdateIdentity must be atomic per identifier: the stored history is only
// ever replaced by an identical history or by a strict extension of it.
// Anything else fails with ErrConflictingHistory and leaves the record as is.
type IdentitiesRepository interface {
	// GetIdentity fails with ErrNotFound when no record exists.
	GetIdentity(ctx context.Context, id domaintypes.Identifier) (domaintypes.ChangeHistory, error)
	// RetrieveIdentity reports ok=false instead of failing when no record exists.
	RetrieveIdentity(
		ctx context.Context,
		id domaintypes.Identifier,
	) (history domaintypes.ChangeHistory, ok bool, err error)
	UpdateIdentity(ctx context.Context, id domaintypes.Identifier, history domaintypes.ChangeHistory) error
	ListIdentifiers(ctx context.Context) ([]domaintypes.Identifier, error)
}
