package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rpix.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.CacheSize != 20 || cfg.OpenWindowAhead != 5 || cfg.WindowBack != 3 || cfg.WindowAhead != 5 {
		t.Fatalf("unexpected engine defaults: %+v", cfg)
	}
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"isolation", func(c *Config) { c.DecodeIsolation = "thread" }, "decode isolation"},
		{"cache size", func(c *Config) { c.CacheSize = 0 }, "cache_size"},
		{"negative window", func(c *Config) { c.WindowAhead = -1 }, "window_ahead"},
		{"negative workers", func(c *Config) { c.IOWorkers = -2 }, "io_workers"},
		{"timeout", func(c *Config) { c.DecodeTimeout = 0 }, "decode_timeout"},
		{"file size", func(c *Config) { c.MaxFileSize = -1 }, "max_file_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
cache_size: 8
window_back: 1
decode_isolation: inline
decode_timeout: 2s
show_hidden: true
`)

	cfg, v, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CacheSize != 8 || cfg.WindowBack != 1 || !cfg.ShowHidden {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.DecodeIsolation != DecodeIsolationInline {
		t.Fatalf("expected inline isolation, got %s", cfg.DecodeIsolation)
	}
	if cfg.DecodeTimeout != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %s", cfg.DecodeTimeout)
	}
	if cfg.WindowAhead != 5 {
		t.Fatalf("expected default window_ahead to survive, got %d", cfg.WindowAhead)
	}
	if v.ConfigFileUsed() != path {
		t.Fatalf("expected config file %s, got %s", path, v.ConfigFileUsed())
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "cache_size: 8\n")
	t.Setenv("RPIX_CACHE_SIZE", "12")
	t.Setenv("RPIX_DECODE_WORKERS", "3")

	cfg, _, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CacheSize != 12 {
		t.Fatalf("expected env to override file, got %d", cfg.CacheSize)
	}
	if cfg.DecodeWorkers != 3 {
		t.Fatalf("expected env default override, got %d", cfg.DecodeWorkers)
	}
}

func TestLoadConfigInvalidFile(t *testing.T) {
	path := writeConfig(t, "log_level: shouting\n")
	if _, _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error")
	}

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if _, _, err := LoadConfig(missing); err == nil {
		t.Fatal("expected an explicit config file that does not exist to fail")
	}
}

func TestSaveLastFolderRoundTrip(t *testing.T) {
	path := writeConfig(t, "cache_size: 9\n")
	_, v, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	folder := filepath.Join(t.TempDir(), "holiday")
	if err := SaveLastFolder(v, folder); err != nil {
		t.Fatalf("save: %v", err)
	}

	cfg, _, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.LastFolder != folder {
		t.Fatalf("expected last folder %s, got %s", folder, cfg.LastFolder)
	}
	if cfg.CacheSize != 9 {
		t.Fatalf("saving must keep existing settings, got cache_size %d", cfg.CacheSize)
	}
}

func TestLogFilePathExpandsHome(t *testing.T) {
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg := DefaultConfig()
	got, err := cfg.LogFilePath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, home) || !strings.HasSuffix(got, filepath.Join(".rpix", "rpix.log")) {
		t.Fatalf("expected log file under %s, got %s", home, got)
	}

	cfg.LogFile = ""
	if got, _ := cfg.LogFilePath(); got != "" {
		t.Fatalf("expected empty path, got %s", got)
	}
}
