// Package config loads daemon and CLI configuration from a config file,
// environment variables, and defaults, in that order of precedence
// (environment highest).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the CLI and daemon need to run.
type Config struct {
	// DBPath is the local SQLite database file.
	DBPath string `mapstructure:"db_path"`

	// RemoteURL is the websocket endpoint of the remote document store.
	// Empty means local-only mode.
	RemoteURL string `mapstructure:"remote_url"`

	// AccountID scopes remote documents. Empty means signed out.
	AccountID string `mapstructure:"account_id"`

	// PullInterval is how often the daemon reconciles with the remote store.
	PullInterval time.Duration `mapstructure:"pull_interval"`

	// WatchDebounce batches local database change events.
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`

	// LogFile is where the daemon writes its rotating log. Empty means
	// stderr.
	LogFile string `mapstructure:"log_file"`
}

// Load reads configuration. path may be empty, in which case pawsync.yaml is
// searched for in the working directory and ~/.config/pawsync; a missing
// config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", defaultDBPath())
	v.SetDefault("remote_url", "")
	v.SetDefault("account_id", "")
	v.SetDefault("pull_interval", 5*time.Minute)
	v.SetDefault("watch_debounce", 30*time.Second)
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("PAWSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("pawsync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pawsync"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.PullInterval <= 0 {
		return nil, fmt.Errorf("pull_interval must be positive, got %s", cfg.PullInterval)
	}
	if cfg.WatchDebounce <= 0 {
		return nil, fmt.Errorf("watch_debounce must be positive, got %s", cfg.WatchDebounce)
	}
	return &cfg, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pawsync.db"
	}
	return filepath.Join(home, ".pawsync", "pawsync.db")
}
