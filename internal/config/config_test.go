package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default scope is .ics.uci.edu", func(t *testing.T) {
		t.Parallel()
		if cfg.Scope != ".ics.uci.edu" {
			t.Errorf("expected scope '.ics.uci.edu', got '%s'", cfg.Scope)
		}
	})

	t.Run("default trap thresholds", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxURLLength != 750 || cfg.FamilyThreshold != 25 || cfg.RepeatThreshold != 10 {
			t.Errorf("expected thresholds 750/25/10, got %d/%d/%d",
				cfg.MaxURLLength, cfg.FamilyThreshold, cfg.RepeatThreshold)
		}
	})

	t.Run("default report is output.txt in text format", func(t *testing.T) {
		t.Parallel()
		if cfg.ReportFile != "output.txt" || cfg.ReportFormat != "text" {
			t.Errorf("expected output.txt/text, got %s/%s", cfg.ReportFile, cfg.ReportFormat)
		}
		if cfg.TopWords != 50 {
			t.Errorf("expected 50 top words, got %d", cfg.TopWords)
		}
	})

	t.Run("default fetch settings", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != 8 {
			t.Errorf("expected 8 workers, got %d", cfg.Workers)
		}
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", cfg.Timeout)
		}
		if cfg.MaxBodySize != 5*1024*1024 {
			t.Errorf("expected 5MB body limit, got %d", cfg.MaxBodySize)
		}
		if cfg.RequestsPerSecond != 0 || cfg.MaxPages != 0 {
			t.Errorf("expected unlimited rate and pages, got %v/%d", cfg.RequestsPerSecond, cfg.MaxPages)
		}
	})

	t.Run("default checkpointing", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB || cfg.CheckpointEvery != 100 {
			t.Errorf("expected checkpoints every 100 pages, got %v/%d", cfg.SaveToDB, cfg.CheckpointEvery)
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("denied extensions are a private copy", func(t *testing.T) {
		t.Parallel()
		other := NewConfig()
		if len(other.DeniedExtensions) != 64 {
			t.Errorf("expected 64 denied extensions, got %d", len(other.DeniedExtensions))
		}
		other.DeniedExtensions[0] = "changed"
		if NewConfig().DeniedExtensions[0] != "css" {
			t.Error("expected defaults to be unaffected by modification")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Seeds = []string{"http://www.ics.uci.edu/"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "nil seeds", modify: func(c *Config) { c.Seeds = nil }, want: ErrNoSeed},
		{name: "empty scope", modify: func(c *Config) { c.Scope = "" }, want: ErrEmptyScope},
		{name: "zero workers", modify: func(c *Config) { c.Workers = 0 }, want: ErrInvalidWorkers},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, want: ErrInvalidTimeout},
		{name: "zero url length", modify: func(c *Config) { c.MaxURLLength = 0 }, want: ErrInvalidThreshold},
		{name: "zero family threshold", modify: func(c *Config) { c.FamilyThreshold = 0 }, want: ErrInvalidThreshold},
		{name: "negative repeat threshold", modify: func(c *Config) { c.RepeatThreshold = -1 }, want: ErrInvalidThreshold},
		{name: "zero top words", modify: func(c *Config) { c.TopWords = 0 }, want: ErrInvalidTopWords},
		{name: "negative rate", modify: func(c *Config) { c.RequestsPerSecond = -0.5 }, want: ErrInvalidRate},
		{name: "negative body size", modify: func(c *Config) { c.MaxBodySize = -1 }, want: ErrInvalidMaxBodySize},
		{name: "negative max pages", modify: func(c *Config) { c.MaxPages = -1 }, want: ErrInvalidMaxPages},
		{name: "negative checkpoint interval", modify: func(c *Config) { c.CheckpointEvery = -1 }, want: ErrInvalidCheckpointInterval},
		{name: "unknown format", modify: func(c *Config) { c.ReportFormat = "xml" }, want: ErrInvalidReportFormat},
		{name: "md alias", modify: func(c *Config) { c.ReportFormat = "md" }},
		{name: "several formats", modify: func(c *Config) { c.ReportFormat = "text, JSON,md" }},
		{name: "unknown format in list", modify: func(c *Config) { c.ReportFormat = "text,xml" }, want: ErrInvalidReportFormat},
		{name: "empty entry in list", modify: func(c *Config) { c.ReportFormat = "text," }, want: ErrInvalidReportFormat},
		{name: "zero checkpoint interval", modify: func(c *Config) { c.CheckpointEvery = 0 }},
		{name: "positive rate", modify: func(c *Config) { c.RequestsPerSecond = 2.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile("/nonexistent/path/.webcrawler.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cf != nil {
			t.Error("expected nil file when not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".webcrawler.yaml")
		content := `seeds:
  - http://www.ics.uci.edu/
scope: .cs.uci.edu
trap:
  family_threshold: 40
fetch:
  workers: 2
  timeout: 5s
  rate: 1.5
report:
  format: markdown
checkpoint:
  enabled: false
`
		writeFile(t, configPath, content)

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		cf.Apply(cfg)

		if !reflect.DeepEqual(cfg.Seeds, []string{"http://www.ics.uci.edu/"}) {
			t.Errorf("unexpected seeds %v", cfg.Seeds)
		}
		if cfg.Scope != ".cs.uci.edu" {
			t.Errorf("expected scope .cs.uci.edu, got %q", cfg.Scope)
		}
		if cfg.FamilyThreshold != 40 {
			t.Errorf("expected family threshold 40, got %d", cfg.FamilyThreshold)
		}
		if cfg.Workers != 2 || cfg.Timeout != 5*time.Second || cfg.RequestsPerSecond != 1.5 {
			t.Errorf("unexpected fetch settings %d/%v/%v", cfg.Workers, cfg.Timeout, cfg.RequestsPerSecond)
		}
		if cfg.ReportFormat != "markdown" {
			t.Errorf("expected markdown, got %q", cfg.ReportFormat)
		}
		if cfg.SaveToDB {
			t.Error("expected checkpointing to be disabled")
		}
	})

	t.Run("omitted fields keep defaults", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".webcrawler.yaml")
		writeFile(t, configPath, "report:\n  top_words: 10\n")

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg := NewConfig()
		cf.Apply(cfg)

		if cfg.TopWords != 10 {
			t.Errorf("expected 10 top words, got %d", cfg.TopWords)
		}
		if cfg.MaxURLLength != DefaultMaxURLLength || cfg.Workers != DefaultWorkers || cfg.ReportFile != DefaultReportFile {
			t.Error("expected untouched fields to keep their defaults")
		}
	})

	t.Run("empty file is valid", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".webcrawler.yaml")
		writeFile(t, configPath, "")

		if _, err := LoadConfigFile(configPath); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".webcrawler.yaml")
		writeFile(t, configPath, `invalid: yaml: content: [}`)

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("returns error for unknown keys", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".webcrawler.yaml")
		writeFile(t, configPath, "fetch:\n  wrokers: 3\n")

		_, err := LoadConfigFile(configPath)
		if err == nil || !strings.Contains(err.Error(), "wrokers") {
			t.Errorf("expected unknown key error, got %v", err)
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		writeFile(t, configPath, "scope: .uci.edu\n")

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("finds file in working directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, DefaultConfigFile), "scope: .uci.edu\n")
		t.Chdir(dir)

		result := FindConfigFile("")
		if filepath.Base(result) != DefaultConfigFile {
			t.Errorf("expected %s in working directory, got %q", DefaultConfigFile, result)
		}
	})
}

// TestLoad tests building a Config from defaults and a file.
func TestLoad(t *testing.T) {
	t.Run("explicit file is applied", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "crawl.yaml")
		writeFile(t, configPath, "checkpoint:\n  every: 5\n")

		cfg, err := Load(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.CheckpointEvery != 5 {
			t.Errorf("expected checkpoint interval 5, got %d", cfg.CheckpointEvery)
		}
		if cfg.ConfigFilePath != configPath {
			t.Errorf("expected ConfigFilePath %q, got %q", configPath, cfg.ConfigFilePath)
		}
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid file is an error", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "crawl.yaml")
		writeFile(t, configPath, "seeds: {")

		if _, err := Load(configPath); err == nil {
			t.Error("expected parse error")
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if filepath.Base(dir) != AppName {
			t.Errorf("expected XDG %s dir to end with %s, got %q", name, AppName, dir)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
}
