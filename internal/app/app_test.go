package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idchain/internal/app"
	"idchain/internal/domain"
)

func TestLoadConfig_Precedence(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, app.ConfigFile), []byte(`
repository = "bolt"
vault = "memory"
key_type = "p256"
log_level = "info"
`), 0o600))

	t.Setenv("IDCHAIN_HOME", "")
	t.Setenv("IDCHAIN_KEY_TYPE", "ed25519")
	t.Setenv("IDCHAIN_PASSPHRASE", "secret")

	cfg, err := app.LoadConfig(home, "")
	require.NoError(t, err)
	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, app.RepositoryBolt, cfg.Repository, "from file")
	assert.Equal(t, app.VaultMemory, cfg.Vault, "from file")
	assert.Equal(t, "ed25519", cfg.KeyType, "env beats file")
	assert.Equal(t, "info", cfg.LogLevel, "from file")
	assert.Equal(t, "text", cfg.LogFormat, "default")
	assert.Equal(t, "secret", cfg.Passphrase, "env only")
}

func TestLoadConfig_HomeFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("IDCHAIN_HOME", home)

	cfg, err := app.LoadConfig("", "")
	require.NoError(t, err)
	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, app.RepositorySQLite, cfg.Repository)
}

func TestLoadConfig_Errors(t *testing.T) {
	home := t.TempDir()
	t.Setenv("IDCHAIN_HOME", "")

	_, err := app.LoadConfig(home, filepath.Join(home, "missing.toml"))
	require.Error(t, err, "explicit config file must exist")

	bad := filepath.Join(home, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`repository = "postgres"`), 0o600))
	_, err = app.LoadConfig(home, bad)
	require.ErrorContains(t, err, "postgres")

	require.NoError(t, os.WriteFile(bad, []byte(`repository = [`), 0o600))
	_, err = app.LoadConfig(home, bad)
	require.Error(t, err)

	t.Setenv("IDCHAIN_LOG_LEVEL", "chatty")
	_, err = app.LoadConfig(home, "")
	require.ErrorContains(t, err, "chatty")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := app.DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"

	log, err := app.NewLogger(&buf, cfg)
	require.NoError(t, err)
	log.Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestNewWire_Backends(t *testing.T) {
	ctx := context.Background()
	for _, repo := range []string{app.RepositoryMemory, app.RepositoryFile, app.RepositorySQLite, app.RepositoryBolt} {
		t.Run(repo, func(t *testing.T) {
			cfg := app.DefaultConfig()
			cfg.Home = t.TempDir()
			cfg.Repository = repo
			cfg.Passphrase = "pw"

			w, err := app.NewWire(cfg, nil)
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, w.Close()) })

			created, err := w.Identities.CreateIdentity(ctx)
			require.NoError(t, err)
			got, err := w.Identities.GetIdentity(ctx, created.Identifier())
			require.NoError(t, err)
			assert.True(t, created.Equal(got))
			assert.Equal(t, domain.KeyTypeEd25519, got.PublicKey().Type)
		})
	}
}

func TestNewWire_InvalidConfig(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.Home = t.TempDir()
	cfg.Vault = "hsm"
	_, err := app.NewWire(cfg, nil)
	require.Error(t, err)
}
