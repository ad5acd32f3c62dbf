// ABOUTME: Tests for configuration load/save functionality
// ABOUTME: Validates TOML parsing and default config fallback behavior

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.QuotaLimit != 10000 {
		t.Errorf("Expected QuotaLimit 10000, got %d", cfg.QuotaLimit)
	}

	if cfg.HistorySize != 100 {
		t.Errorf("Expected HistorySize 100, got %d", cfg.HistorySize)
	}

	if cfg.DefaultPrivacy != "private" {
		t.Errorf("Expected DefaultPrivacy private, got %q", cfg.DefaultPrivacy)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	// Create temp file
	tmpfile, err := os.CreateTemp(t.TempDir(), "yanger-*.toml")
	if err != nil {
		t.Fatal(err)
	}

	defer os.Remove(tmpfile.Name())
	tmpfile.Close()

	// Save a tweaked config
	cfg := DefaultConfig()
	cfg.QuotaLimit = 5000
	cfg.CacheTTLMinutes = 30

	if err := SaveConfig(tmpfile.Name(), cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	// Load it back
	loaded, err := LoadConfig(tmpfile.Name())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// Verify values match
	if loaded.QuotaLimit != cfg.QuotaLimit {
		t.Errorf("QuotaLimit mismatch: got %d, want %d", loaded.QuotaLimit, cfg.QuotaLimit)
	}

	if loaded.CacheTTLMinutes != cfg.CacheTTLMinutes {
		t.Errorf("CacheTTLMinutes mismatch: got %d, want %d", loaded.CacheTTLMinutes, cfg.CacheTTLMinutes)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	// Loading non-existent file should return defaults without error
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	if err != nil {
		t.Errorf("Expected no error for non-existent file, got: %v", err)
	}

	// Should be default values
	defaults := DefaultConfig()
	if cfg.QuotaLimit != defaults.QuotaLimit {
		t.Errorf("Expected default QuotaLimit %d, got %d", defaults.QuotaLimit, cfg.QuotaLimit)
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := os.WriteFile(path, []byte("quota_limit = 2000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.QuotaLimit != 2000 {
		t.Errorf("QuotaLimit = %d, want 2000", cfg.QuotaLimit)
	}

	// Omitted keys keep their defaults.
	if cfg.HistorySize != DefaultConfig().HistorySize {
		t.Errorf("HistorySize = %d, want default %d", cfg.HistorySize, DefaultConfig().HistorySize)
	}
}

func TestNormalizedClampsNonsense(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	content := "quota_limit = -5\nhistory_size = 0\ndefault_privacy = \"everyone\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.QuotaLimit != defaults.QuotaLimit {
		t.Errorf("QuotaLimit = %d, want default", cfg.QuotaLimit)
	}

	if cfg.HistorySize != defaults.HistorySize {
		t.Errorf("HistorySize = %d, want default", cfg.HistorySize)
	}

	if cfg.DefaultPrivacy != "private" {
		t.Errorf("DefaultPrivacy = %q, want private", cfg.DefaultPrivacy)
	}
}

func TestSharedConfig(t *testing.T) {
	shared := &SharedConfig{}
	shared.Update(DefaultConfig())

	cfg := shared.Get()
	cfg.QuotaLimit = 1

	// Get returns a copy; mutating it must not affect the shared value.
	if shared.Get().QuotaLimit == 1 {
		t.Error("SharedConfig.Get leaked a reference")
	}
}
