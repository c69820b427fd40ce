// Package store provides the IdentitiesRepository backends.
//
// Every backend stores the canonical change history encoding keyed by
// identifier and applies the same update policy: a record is created on
// first write and afterwards only replaced by a strict extension of what is
// stored. Identical writes are no-ops; forks and stale prefixes fail with
// domain.ErrConflictingHistory. The check and the write are atomic per
// identifier in each backend:
//
//   - MemoryRepository (internal/cmap upsert under the map lock)
//   - FileRepository (one JSON document per identity, process mutex,
//     temp file + rename)
//   - SQLiteRepository (modernc.org/sqlite, conditional INSERT/UPDATE loop)
//   - BoltRepository (go.etcd.io/bbolt, single read-write transaction)
//
// Repositories are caches, not trust sources: callers re-verify what they
// load.
package store
