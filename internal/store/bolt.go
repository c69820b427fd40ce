package store

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"idchain/internal/domain"
)

const identitiesBucket = "identities"

// BoltRepository stores encoded histories in a bbolt bucket keyed by the
// raw identifier bytes. Reconciliation runs inside the write transaction.
type BoltRepository struct {
	db *bbolt.DB
}

// OpenBoltRepository opens or creates the database at path.
func OpenBoltRepository(path string) (*BoltRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(identitiesBucket)); err != nil {
			return fmt.Errorf("create identities bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltRepository{db: db}, nil
}

// Close closes the underlying database.
func (r *BoltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *BoltRepository) GetIdentity(ctx context.Context, id domain.Identifier) (domain.ChangeHistory, error) {
	history, ok, err := r.RetrieveIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(id)
	}
	return history, nil
}

func (r *BoltRepository) RetrieveIdentity(ctx context.Context, id domain.Identifier) (domain.ChangeHistory, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var history domain.ChangeHistory
	err := r.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}
		payload := b.Get(id.Slice())
		if payload == nil {
			return nil
		}
		// payload is only valid inside the transaction.
		history, err = decodeRecord(id, bytes.Clone(payload))
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return history, history != nil, nil
}

func (r *BoltRepository) UpdateIdentity(ctx context.Context, id domain.Identifier, history domain.ChangeHistory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}
		encoded, write, err := reconcile(id, b.Get(id.Slice()), history)
		if err != nil || !write {
			return err
		}
		return b.Put(id.Slice(), encoded)
	})
}

func (r *BoltRepository) ListIdentifiers(ctx context.Context) ([]domain.Identifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ids []domain.Identifier
	err := r.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, _ []byte) error {
			if len(k) != domain.IdentifierSize {
				return fmt.Errorf("malformed key %x in %s bucket", k, identitiesBucket)
			}
			var id domain.Identifier
			copy(id[:], k)
			ids = append(ids, id)
			return nil
		})
	})
	return ids, err
}

func bucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b := tx.Bucket([]byte(identitiesBucket))
	if b == nil {
		return nil, fmt.Errorf("%s bucket is missing", identitiesBucket)
	}
	return b, nil
}

var _ domain.IdentitiesRepository = (*BoltRepository)(nil)
