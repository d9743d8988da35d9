package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up in the
// working directory.
const DefaultConfigFile = ".webcrawler.yaml"

// XDGConfigFile is the configuration file name inside XDGConfigDir.
const XDGConfigFile = "config.yaml"

// File is the structure of the YAML configuration file.
// Every field is optional; nil fields keep the current value.
type File struct {
	Seeds            []string    `yaml:"seeds,omitempty"`
	Scope            *string     `yaml:"scope,omitempty"`
	DeniedExtensions []string    `yaml:"denied_extensions,omitempty"`
	MaxPages         *int        `yaml:"max_pages,omitempty"`
	CorpusDir        *string     `yaml:"corpus_dir,omitempty"`
	Trap             TrapFile    `yaml:"trap,omitempty"`
	Fetch            FetchFile   `yaml:"fetch,omitempty"`
	Report           ReportFile  `yaml:"report,omitempty"`
	Checkpoint       StorageFile `yaml:"checkpoint,omitempty"`
}

// TrapFile holds the trap thresholds of the configuration file.
type TrapFile struct {
	MaxURLLength    *int `yaml:"max_url_length,omitempty"`
	FamilyThreshold *int `yaml:"family_threshold,omitempty"`
	RepeatThreshold *int `yaml:"repeat_threshold,omitempty"`
}

// FetchFile holds the fetch settings of the configuration file.
type FetchFile struct {
	Workers     *int           `yaml:"workers,omitempty"`
	Timeout     *time.Duration `yaml:"timeout,omitempty"`
	MaxBodySize *int64         `yaml:"max_body_size,omitempty"`
	Rate        *float64       `yaml:"rate,omitempty"`
	UserAgent   *string        `yaml:"user_agent,omitempty"`
	Proxy       *string        `yaml:"proxy,omitempty"`
	CacheDir    *string        `yaml:"cache_dir,omitempty"`
}

// ReportFile holds the report settings of the configuration file.
type ReportFile struct {
	Path     *string `yaml:"path,omitempty"`
	Format   *string `yaml:"format,omitempty"`
	TopWords *int    `yaml:"top_words,omitempty"`
}

// StorageFile holds the checkpoint settings of the configuration file.
type StorageFile struct {
	Enabled *bool   `yaml:"enabled,omitempty"`
	DBDir   *string `yaml:"db_dir,omitempty"`
	Every   *int    `yaml:"every,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
// Unknown keys are rejected so typos do not go unnoticed.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply copies every field set in the file onto cfg.
func (cf *File) Apply(cfg *Config) {
	if len(cf.Seeds) > 0 {
		cfg.Seeds = cf.Seeds
	}
	if len(cf.DeniedExtensions) > 0 {
		cfg.DeniedExtensions = cf.DeniedExtensions
	}
	set(&cfg.Scope, cf.Scope)
	set(&cfg.MaxPages, cf.MaxPages)
	set(&cfg.CorpusDir, cf.CorpusDir)

	set(&cfg.MaxURLLength, cf.Trap.MaxURLLength)
	set(&cfg.FamilyThreshold, cf.Trap.FamilyThreshold)
	set(&cfg.RepeatThreshold, cf.Trap.RepeatThreshold)

	set(&cfg.Workers, cf.Fetch.Workers)
	set(&cfg.Timeout, cf.Fetch.Timeout)
	set(&cfg.MaxBodySize, cf.Fetch.MaxBodySize)
	set(&cfg.RequestsPerSecond, cf.Fetch.Rate)
	set(&cfg.UserAgent, cf.Fetch.UserAgent)
	set(&cfg.Proxy, cf.Fetch.Proxy)
	set(&cfg.CacheDir, cf.Fetch.CacheDir)

	set(&cfg.ReportFile, cf.Report.Path)
	set(&cfg.ReportFormat, cf.Report.Format)
	set(&cfg.TopWords, cf.Report.TopWords)

	set(&cfg.SaveToDB, cf.Checkpoint.Enabled)
	set(&cfg.DBDir, cf.Checkpoint.DBDir)
	set(&cfg.CheckpointEvery, cf.Checkpoint.Every)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .webcrawler.yaml in the current directory
// 3. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), XDGConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}
	return ""
}

// Load builds a Config from defaults and the configuration file found by
// FindConfigFile. An explicit configPath that does not exist is an error;
// a missing implicit file is not.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()
	cfg.ConfigFilePath = configPath

	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return cfg, nil
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	cf.Apply(cfg)
	return cfg, nil
}
