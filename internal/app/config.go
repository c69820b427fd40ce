package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"idchain/internal/domain"
)

// Repository backends.
const (
	RepositoryMemory = "memory"
	RepositoryFile   = "file"
	RepositorySQLite = "sqlite"
	RepositoryBolt   = "bolt"
)

// Vault backends.
const (
	VaultMemory = "memory"
	VaultFile   = "file"
)

// ConfigFile is the name of the optional configuration file inside Home.
const ConfigFile = "config.toml"

// Config holds runtime wiring options for building the app.
//
// Values are layered: DefaultConfig, then the TOML file, then IDCHAIN_*
// environment variables, then whatever the caller sets afterwards (flags).
// Home and Passphrase are never read from the file.
type Config struct {
	Home         string `toml:"-"             env:"IDCHAIN_HOME"`          // state directory, e.g. $HOME/.idchain
	Repository   string `toml:"repository"    env:"IDCHAIN_REPOSITORY"`    // memory | file | sqlite | bolt
	Vault        string `toml:"vault"         env:"IDCHAIN_VAULT"`         // memory | file
	KeyType      string `toml:"key_type"      env:"IDCHAIN_KEY_TYPE"`      // ed25519 | p256
	Passphrase   string `toml:"-"             env:"IDCHAIN_PASSPHRASE"`    // file vault passphrase
	LogLevel     string `toml:"log_level"     env:"IDCHAIN_LOG_LEVEL"`     // debug | info | warn | error
	LogFormat    string `toml:"log_format"    env:"IDCHAIN_LOG_FORMAT"`    // text | json
	OTelEndpoint string `toml:"otel_endpoint" env:"IDCHAIN_OTEL_ENDPOINT"` // OTLP/HTTP traces URL; empty disables tracing
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	home := ".idchain"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".idchain")
	}
	return Config{
		Home:       home,
		Repository: RepositorySQLite,
		Vault:      VaultFile,
		KeyType:    string(domain.KeyTypeEd25519),
		LogLevel:   "warn",
		LogFormat:  "text",
	}
}

// LoadConfig layers defaults, the TOML file and the environment.
//
// home, when set, takes precedence over IDCHAIN_HOME. configPath names the
// TOML file explicitly and must exist; otherwise <home>/config.toml is read
// when present.
func LoadConfig(home, configPath string) (Config, error) {
	cfg := DefaultConfig()

	// Home decides where the file lives, so resolve it first.
	if h := os.Getenv("IDCHAIN_HOME"); h != "" {
		cfg.Home = h
	}
	if home != "" {
		cfg.Home = home
	}

	path := configPath
	if path == "" {
		path = filepath.Join(cfg.Home, ConfigFile)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if configPath != "" || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if home != "" {
		cfg.Home = home
	}
	return cfg, cfg.Validate()
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Home) == "" {
		return errors.New("home directory is required")
	}
	switch c.Repository {
	case RepositoryMemory, RepositoryFile, RepositorySQLite, RepositoryBolt:
	default:
		return fmt.Errorf("unknown repository backend %q", c.Repository)
	}
	switch c.Vault {
	case VaultMemory, VaultFile:
	default:
		return fmt.Errorf("unknown vault backend %q", c.Vault)
	}
	if _, err := domain.ParseKeyType(c.KeyType); err != nil {
		return err
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
