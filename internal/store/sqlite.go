package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"idchain/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// maxCASAttempts bounds the compare-and-swap loop of UpdateIdentity. Each
// retry re-reads the record, so only writers racing on the same identifier
// ever need more than one.
const maxCASAttempts = 8

// SQLiteRepository stores encoded histories in a SQLite table.
//
// Updates are conditional writes: a new record is inserted with
// ON CONFLICT DO NOTHING and an existing one is only replaced while it still
// holds the bytes the reconciliation was computed against. This keeps the
// per-identifier guarantee even when several processes share the file.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLiteRepository opens or creates the database at path and applies the schema.
func OpenSQLiteRepository(path string) (*SQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	db, err := sql.Open("sqlite", filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close closes the database handle.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) GetIdentity(ctx context.Context, id domain.Identifier) (domain.ChangeHistory, error) {
	history, ok, err := r.RetrieveIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(id)
	}
	return history, nil
}

func (r *SQLiteRepository) RetrieveIdentity(ctx context.Context, id domain.Identifier) (domain.ChangeHistory, bool, error) {
	stored, err := r.load(ctx, id)
	if err != nil || stored == nil {
		return nil, false, err
	}
	history, err := decodeRecord(id, stored)
	if err != nil {
		return nil, false, err
	}
	return history, true, nil
}

func (r *SQLiteRepository) UpdateIdentity(ctx context.Context, id domain.Identifier, history domain.ChangeHistory) error {
	for range maxCASAttempts {
		stored, err := r.load(ctx, id)
		if err != nil {
			return err
		}
		encoded, write, err := reconcile(id, stored, history)
		if err != nil || !write {
			return err
		}

		now := time.Now().Unix()
		var res sql.Result
		if stored == nil {
			res, err = r.db.ExecContext(ctx,
				`INSERT INTO identities (identifier, change_history, updated_at)
				 VALUES (?, ?, ?)
				 ON CONFLICT(identifier) DO NOTHING`,
				id.String(), encoded, now,
			)
		} else {
			res, err = r.db.ExecContext(ctx,
				`UPDATE identities SET change_history = ?, updated_at = ?
				 WHERE identifier = ? AND change_history = ?`,
				encoded, now, id.String(), stored,
			)
		}
		if err != nil {
			return fmt.Errorf("write identity %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("write identity %s: %w", id, err)
		}
		if n == 1 {
			return nil
		}
		// Another writer got there first; reconcile against its record.
	}
	return fmt.Errorf("%w: %s is being updated concurrently", domain.ErrConflictingHistory, id)
}

func (r *SQLiteRepository) ListIdentifiers(ctx context.Context) ([]domain.Identifier, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT identifier FROM identities ORDER BY identifier`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var ids []domain.Identifier
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("list identities: %w", err)
		}
		id, err := domain.ParseIdentifier(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// load returns the stored encoding of id, or nil when there is none.
func (r *SQLiteRepository) load(ctx context.Context, id domain.Identifier) ([]byte, error) {
	var stored []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT change_history FROM identities WHERE identifier = ?`, id.String(),
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load identity %s: %w", id, err)
	}
	return stored, nil
}

var _ domain.IdentitiesRepository = (*SQLiteRepository)(nil)
