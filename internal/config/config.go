// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/chime/internal/model"
)

// Default configuration values.
const (
	DefaultSource   = "auto"
	DefaultTheme    = "freedesktop"
	DefaultBackend  = "auto"
	DefaultBuffer   = 100 * time.Millisecond
	DefaultCacheTTL = 10 * time.Minute
	MaxCatalogLimit = 100
)

// Catalog sources.
const (
	SourceAuto        = "auto"
	SourceFreedesktop = "freedesktop"
	SourceDirectory   = "directory"
	SourceStatic      = "static"
)

// Player backends.
const (
	BackendAuto = "auto"
	BackendBeep = "beep"
	BackendExec = "exec"
)

// Config represents the chime configuration.
// Loaded from ~/.config/chime/config.toml
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	Player  PlayerConfig  `toml:"player"`
	DBus    DBusConfig    `toml:"dbus"`
}

// CatalogConfig controls sound enumeration.
type CatalogConfig struct {
	Source       string        `toml:"source"`        // auto, freedesktop, directory, static
	Theme        string        `toml:"theme"`         // XDG sound theme name
	Limit        int           `toml:"limit"`         // Enumerated entries after the default entry
	Dirs         []string      `toml:"dirs"`          // Extra directories to scan
	DefaultSound string        `toml:"default_sound"` // Overrides the platform default locator
	Static       []StaticSound `toml:"static"`        // Entries for source = "static" (built-in list if empty)
}

// StaticSound is one configured catalog entry.
type StaticSound struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Locator string `toml:"locator"`
	System  bool   `toml:"system"`
}

// PlayerConfig controls audio playback.
type PlayerConfig struct {
	Backend  string            `toml:"backend"`   // auto, beep, exec
	Buffer   Duration          `toml:"buffer"`    // Speaker buffer length
	CacheTTL Duration          `toml:"cache_ttl"` // Decoded sound cache lifetime
	Watch    bool              `toml:"watch"`     // Invalidate cached sounds when files change
	Command  string            `toml:"command"`   // Exec backend command, auto-detected if empty
	Aliases  map[string]string `toml:"aliases"`   // Locator aliases, e.g. "chime" = "/path/chime.oga"
}

// DBusConfig controls the session bus service.
type DBusConfig struct {
	Enabled bool `toml:"enabled"`
}

// DefaultStaticSounds is the curated list used by the static catalog source
// when no [[catalog.static]] entries are configured.
// Locators are aliases resolved through [player.aliases].
func DefaultStaticSounds() []StaticSound {
	names := []struct{ id, name string }{
		{"tri-tone", "Tri-tone"},
		{"chime", "Chime"},
		{"glass", "Glass"},
		{"horn", "Horn"},
		{"bell", "Bell"},
		{"electronic", "Electronic"},
	}

	sounds := make([]StaticSound, 0, len(names))
	for _, n := range names {
		sounds = append(sounds, StaticSound{ID: n.id, Name: n.name, Locator: n.id, System: true})
	}
	return sounds
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Source: DefaultSource,
			Theme:  DefaultTheme,
			Limit:  model.DefaultCatalogLimit,
		},
		Player: PlayerConfig{
			Backend:  DefaultBackend,
			Buffer:   Duration(DefaultBuffer),
			CacheTTL: Duration(DefaultCacheTTL),
			Watch:    true,
			Aliases:  make(map[string]string),
		},
		DBus: DBusConfig{
			Enabled: true,
		},
	}
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "chime", "config.toml"), nil
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns the default configuration if the file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig overlays TOML data on the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Player.Aliases == nil {
		cfg.Player.Aliases = make(map[string]string)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration to path, or the default path if empty.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// StaticSounds returns the configured static entries, or the built-in list.
func (c *CatalogConfig) StaticSounds() []StaticSound {
	if len(c.Static) == 0 {
		return DefaultStaticSounds()
	}
	return c.Static
}

// ValidSources returns all valid catalog source values.
func ValidSources() []string {
	return []string{SourceAuto, SourceFreedesktop, SourceDirectory, SourceStatic}
}

// ValidBackends returns all valid player backend values.
func ValidBackends() []string {
	return []string{BackendAuto, BackendBeep, BackendExec}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(ValidSources(), c.Catalog.Source) {
		return fmt.Errorf("invalid catalog source %q, must be one of: %v", c.Catalog.Source, ValidSources())
	}

	if c.Catalog.Limit < 1 || c.Catalog.Limit > MaxCatalogLimit {
		return fmt.Errorf("catalog limit must be between 1 and %d, got %d", MaxCatalogLimit, c.Catalog.Limit)
	}

	for i, s := range c.Catalog.Static {
		if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Locator) == "" {
			return fmt.Errorf("catalog.static[%d]: id and locator are required", i)
		}
	}

	if !slices.Contains(ValidBackends(), c.Player.Backend) {
		return fmt.Errorf("invalid player backend %q, must be one of: %v", c.Player.Backend, ValidBackends())
	}

	if c.Player.Buffer.Duration() < 10*time.Millisecond || c.Player.Buffer.Duration() > time.Second {
		return fmt.Errorf("player buffer must be between 10ms and 1s, got %s", c.Player.Buffer.Duration())
	}

	if c.Player.CacheTTL.Duration() < 0 {
		return fmt.Errorf("player cache_ttl cannot be negative, got %s", c.Player.CacheTTL.Duration())
	}

	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
