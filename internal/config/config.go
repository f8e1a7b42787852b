// Package config loads and persists the concise TOML configuration document.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/julianstephens/concise/internal/constants"
	apperrors "github.com/julianstephens/concise/internal/errors"
	"github.com/julianstephens/concise/internal/logger"
)

// Delta shifts "now" to produce the logical day. Unset parts count as zero.
type Delta struct {
	Days    *int `mapstructure:"days" toml:"days,omitempty"`
	Hours   *int `mapstructure:"hours" toml:"hours,omitempty"`
	Minutes *int `mapstructure:"minutes" toml:"minutes,omitempty"`
}

// Timestamp holds the logical-day settings
type Timestamp struct {
	Delta Delta `mapstructure:"delta" toml:"delta"`
}

// Database holds the connection settings. An empty URL means no connection.
type Database struct {
	URL string `mapstructure:"url" toml:"url"`
	// Keyring reads the URL from the OS keyring when URL is empty
	Keyring bool `mapstructure:"keyring" toml:"keyring,omitempty"`
}

// Config is the top-level configuration document
type Config struct {
	Database  Database  `mapstructure:"database" toml:"database"`
	Timestamp Timestamp `mapstructure:"timestamp" toml:"timestamp"`
}

// IntPtr returns a pointer to i
func IntPtr(i int) *int {
	return &i
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// DefaultDelta returns the delta used when the config does not set one
func DefaultDelta() Delta {
	return Delta{Days: IntPtr(constants.DefaultDeltaDays)}
}

// Default returns a config with no database and the default delta
func Default() Config {
	return Config{
		Timestamp: Timestamp{Delta: DefaultDelta()},
	}
}

// Duration converts the delta to a time.Duration
func (d Delta) Duration() time.Duration {
	return time.Duration(intValue(d.Days))*24*time.Hour +
		time.Duration(intValue(d.Hours))*time.Hour +
		time.Duration(intValue(d.Minutes))*time.Minute
}

// Parts returns days, hours and minutes with unset parts as zero
func (d Delta) Parts() (days, hours, minutes int) {
	return intValue(d.Days), intValue(d.Hours), intValue(d.Minutes)
}

func (d Delta) String() string {
	days, hours, minutes := d.Parts()
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}

// Load reads the TOML document at path. A missing or unparseable file is an error;
// optional sections that are absent get their defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, apperrors.Wrap(apperrors.ErrConfigRead, fmt.Errorf("reading config %s: %w", path, err))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, apperrors.Wrap(apperrors.ErrConfigRead, fmt.Errorf("parsing config %s: %w", path, err))
	}

	if !v.IsSet("timestamp.delta.days") && !v.IsSet("timestamp.delta.hours") && !v.IsSet("timestamp.delta.minutes") {
		cfg.Timestamp.Delta = DefaultDelta()
	}

	logger.Debug("Loaded config", "path", path, "delta", cfg.Timestamp.Delta.String())
	return cfg, nil
}

// Save writes cfg to path. The document is written to a temporary file in the same
// directory and renamed over path, so a failed write leaves the previous file intact.
func Save(cfg Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrConfigWrite, fmt.Errorf("encoding config: %w", err))
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrConfigWrite, fmt.Errorf("creating temp file in %s: %w", dir, err))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.Wrap(apperrors.ErrConfigWrite, fmt.Errorf("writing %s: %w", tmpName, err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperrors.Wrap(apperrors.ErrConfigWrite, fmt.Errorf("syncing %s: %w", tmpName, err))
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrap(apperrors.ErrConfigWrite, fmt.Errorf("closing %s: %w", tmpName, err))
	}
	// The document may carry database credentials
	if err := os.Chmod(tmpName, 0600); err != nil {
		return apperrors.Wrap(apperrors.ErrConfigWrite, fmt.Errorf("setting permissions on %s: %w", tmpName, err))
	}
	if err := os.Rename(tmpName, path); err != nil {
		return apperrors.Wrap(apperrors.ErrConfigWrite, fmt.Errorf("replacing %s: %w", path, err))
	}

	logger.Debug("Saved config", "path", path)
	return nil
}
