package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"idchain/internal/domain"
	identitysvc "idchain/internal/services/identity"
	"idchain/internal/store"
	"idchain/internal/util/fsutil"
	"idchain/internal/vault"
)

// Wire bundles the vault, repository and services for the CLI.
type Wire struct {
	Vault      domain.Vault
	Repository domain.IdentitiesRepository
	Keys       *identitysvc.Keys
	Identities *identitysvc.Creation

	closers []io.Closer
}

// NewWire constructs the dependency graph from cfg. The caller must Close it.
func NewWire(cfg Config, log *slog.Logger) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := fsutil.EnsureDir(cfg.Home); err != nil {
		return nil, err
	}
	w := &Wire{}

	v, err := openVault(cfg)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	w.Vault = v
	w.track(v)

	repo, err := openRepository(cfg)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("open repository: %w", err)
	}
	w.Repository = repo
	w.track(repo)

	keyType, _ := domain.ParseKeyType(cfg.KeyType) // checked by Validate
	w.Keys = identitysvc.NewKeys(v, keyType)
	w.Identities = identitysvc.NewCreation(repo, w.Keys, identitysvc.WithLogger(log))
	return w, nil
}

// Close releases the repository and vault.
func (w *Wire) Close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		errs = append(errs, w.closers[i].Close())
	}
	w.closers = nil
	return errors.Join(errs...)
}

func (w *Wire) track(v any) {
	if c, ok := v.(io.Closer); ok {
		w.closers = append(w.closers, c)
	}
}

func openVault(cfg Config) (domain.Vault, error) {
	switch cfg.Vault {
	case VaultMemory:
		return vault.NewMemoryVault(), nil
	default:
		return vault.OpenFileVault(filepath.Join(cfg.Home, "keys"), cfg.Passphrase)
	}
}

func openRepository(cfg Config) (domain.IdentitiesRepository, error) {
	switch cfg.Repository {
	case RepositoryMemory:
		return store.NewMemoryRepository(), nil
	case RepositoryFile:
		return store.NewFileRepository(filepath.Join(cfg.Home, "identities"))
	case RepositoryBolt:
		return store.OpenBoltRepository(filepath.Join(cfg.Home, "identities.bolt"))
	default:
		return store.OpenSQLiteRepository(filepath.Join(cfg.Home, "identities.sqlite"))
	}
}
