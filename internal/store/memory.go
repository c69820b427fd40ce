package store

import (
	"bytes"
	"context"
	"slices"

	"idchain/internal/cmap"
	"idchain/internal/domain"
)

// MemoryRepository keeps encoded histories in process memory.
type MemoryRepository struct {
	records *cmap.ConcurrentMap[domain.Identifier, []byte]
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: cmap.New[domain.Identifier, []byte]()}
}

func (r *MemoryRepository) GetIdentity(ctx context.Context, id domain.Identifier) (domain.ChangeHistory, error) {
	history, ok, err := r.RetrieveIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(id)
	}
	return history, nil
}

func (r *MemoryRepository) RetrieveIdentity(ctx context.Context, id domain.Identifier) (domain.ChangeHistory, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b, ok := r.records.Get(id)
	if !ok {
		return nil, false, nil
	}
	history, err := decodeRecord(id, b)
	if err != nil {
		return nil, false, err
	}
	return history, true, nil
}

// UpdateIdentity reconciles under the map's write lock.
func (r *MemoryRepository) UpdateIdentity(ctx context.Context, id domain.Identifier, history domain.ChangeHistory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.records.Upsert(id, func(current []byte, _ bool) ([]byte, bool, error) {
		return reconcile(id, current, history)
	})
}

func (r *MemoryRepository) ListIdentifiers(ctx context.Context) ([]domain.Identifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids := r.records.Keys()
	sortIdentifiers(ids)
	return ids, nil
}

func sortIdentifiers(ids []domain.Identifier) {
	slices.SortFunc(ids, func(a, b domain.Identifier) int {
		return bytes.Compare(a[:], b[:])
	})
}

var _ domain.IdentitiesRepository = (*MemoryRepository)(nil)
