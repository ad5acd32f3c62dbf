// ABOUTME: Configuration management for the playlist client
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Settings holds all tunable client parameters.
type Settings struct {
	// QuotaLimit is the daily API unit budget.
	QuotaLimit int `toml:"quota_limit"`
	// CacheTTLMinutes is how long cached remote state is served.
	CacheTTLMinutes int `toml:"cache_ttl_minutes"`
	// HistorySize bounds the undo and redo stacks.
	HistorySize int `toml:"history_size"`
	// DefaultPrivacy is applied to newly created playlists.
	DefaultPrivacy string `toml:"default_privacy"`

	// Paths; empty values resolve under the user config/cache dirs.
	CredentialsPath string `toml:"credentials_path"`
	TokenPath       string `toml:"token_path"`
	CachePath       string `toml:"cache_path"`
	OplogPath       string `toml:"oplog_path"`
}

// GetConfigPath returns the default config file path.
// First tries the current directory, then ~/.config/yanger/config.toml.
func GetConfigPath() string {
	if _, err := os.Stat("./yanger.toml"); err == nil {
		return "./yanger.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./yanger.toml"
	}

	return filepath.Join(home, ".config", "yanger", "config.toml")
}

// LoadConfig loads configuration from a TOML file.
// If the file doesn't exist or fails to load, returns the defaults.
func LoadConfig(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}

		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so omitted keys keep their values.
	settings := DefaultConfig()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return settings.normalized(), nil
}

// SaveConfig saves configuration to a TOML file.
func SaveConfig(path string, settings Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(settings); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Settings {
	dataDir := defaultDataDir()

	return Settings{
		QuotaLimit:      10000,
		CacheTTLMinutes: 5,
		HistorySize:     100,
		DefaultPrivacy:  "private",
		CredentialsPath: filepath.Join(dataDir, "credentials.json"),
		TokenPath:       filepath.Join(dataDir, "token.json"),
		CachePath:       filepath.Join(dataDir, "cache.db"),
		OplogPath:       filepath.Join(dataDir, "oplog.jsonl"),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "yanger")
}

// normalized clamps nonsense values back to defaults.
func (s Settings) normalized() Settings {
	defaults := DefaultConfig()

	if s.QuotaLimit <= 0 {
		s.QuotaLimit = defaults.QuotaLimit
	}

	if s.CacheTTLMinutes <= 0 {
		s.CacheTTLMinutes = defaults.CacheTTLMinutes
	}

	if s.HistorySize <= 0 {
		s.HistorySize = defaults.HistorySize
	}

	switch s.DefaultPrivacy {
	case "public", "private", "unlisted":
	default:
		s.DefaultPrivacy = defaults.DefaultPrivacy
	}

	return s
}

// SharedConfig wraps Settings for concurrent access; the fsnotify watcher
// updates it while the TUI reads it.
type SharedConfig struct {
	mu       sync.RWMutex
	settings Settings
}

// Get returns a copy of the current settings (thread-safe read)
func (sc *SharedConfig) Get() Settings {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.settings
}

// Update updates the settings (thread-safe write)
func (sc *SharedConfig) Update(settings Settings) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.settings = settings
}
