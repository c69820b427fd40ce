package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"idchain/internal/domain"
	"idchain/internal/util/fsutil"
)

// fileRecord is the JSON document stored per identity.
type fileRecord struct {
	Identifier    domain.Identifier `json:"identifier"`
	ChangeHistory []byte            `json:"change_history"`
	UpdatedAt     int64             `json:"updated_at"`
}

// FileRepository stores one JSON document per identity in dir, named after
// the identifier's display form.
type FileRepository struct {
	dir string
	mu  sync.Mutex
}

// NewFileRepository creates dir if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	if err := fsutil.EnsureDir(dir); err != nil {
		return nil, err
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) GetIdentity(ctx context.Context, id domain.Identifier) (domain.ChangeHistory, error) {
	history, ok, err := r.RetrieveIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(id)
	}
	return history, nil
}

func (r *FileRepository) RetrieveIdentity(ctx context.Context, id domain.Identifier) (domain.ChangeHistory, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok, err := r.read(id)
	if err != nil || !ok {
		return nil, false, err
	}
	history, err := decodeRecord(id, rec.ChangeHistory)
	if err != nil {
		return nil, false, err
	}
	return history, true, nil
}

func (r *FileRepository) UpdateIdentity(ctx context.Context, id domain.Identifier, history domain.ChangeHistory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok, err := r.read(id)
	if err != nil {
		return err
	}
	var stored []byte
	if ok {
		stored = rec.ChangeHistory
	}
	encoded, write, err := reconcile(id, stored, history)
	if err != nil || !write {
		return err
	}
	return fsutil.WriteJSON(r.path(id), fileRecord{
		Identifier:    id,
		ChangeHistory: encoded,
		UpdatedAt:     time.Now().Unix(),
	}, fsutil.FileMode)
}

// ListIdentifiers returns the identifiers of every readable record name.
func (r *FileRepository) ListIdentifiers(ctx context.Context) ([]domain.Identifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.Identifier, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok {
			continue
		}
		id, err := domain.ParseIdentifier(name)
		if err != nil {
			continue // not ours
		}
		ids = append(ids, id)
	}
	sortIdentifiers(ids)
	return ids, nil
}

func (r *FileRepository) read(id domain.Identifier) (fileRecord, bool, error) {
	var rec fileRecord
	ok, err := fsutil.ReadJSON(r.path(id), &rec)
	if err != nil || !ok {
		return fileRecord{}, false, err
	}
	return rec, true, nil
}

func (r *FileRepository) path(id domain.Identifier) string {
	return filepath.Join(r.dir, id.String()+".json")
}

var _ domain.IdentitiesRepository = (*FileRepository)(nil)
