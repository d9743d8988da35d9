package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	crawllog "github.com/chris00234/web-crawler/internal/log"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "webcrawler" {
			t.Errorf("expected use 'webcrawler', got %q", cmd.Use)
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has global flags", func(t *testing.T) {
		t.Parallel()
		verbose := cmd.PersistentFlags().Lookup("verbose")
		if verbose == nil || verbose.Shorthand != "v" || verbose.DefValue != "false" {
			t.Fatalf("unexpected verbose flag %+v", verbose)
		}
		if cmd.PersistentFlags().Lookup("log-format") == nil {
			t.Error("expected log-format flag")
		}
		if cmd.PersistentFlags().Lookup("log-file") == nil {
			t.Error("expected log-file flag")
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{"crawl": false, "report": false, "runs": false, "init": false, "version": false}
		for _, sub := range cmd.Commands() {
			name := strings.Fields(sub.Use)[0]
			if _, ok := want[name]; ok {
				want[name] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage || !cmd.SilenceErrors {
			t.Error("expected SilenceUsage and SilenceErrors to be true")
		}
	})
}

// TestSetupLogger tests logger selection by the global flags.
func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("logs to stderr by default", func(t *testing.T) {
		t.Parallel()

		var stderr bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetErr(&stderr)

		logger, closeLog, err := setupLogger(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closeLog()

		logger.Warn("visible", "cookie", "id=1")
		if !strings.Contains(stderr.String(), "visible") {
			t.Errorf("expected warning on stderr, got %q", stderr.String())
		}
		if strings.Contains(stderr.String(), "id=1") {
			t.Errorf("expected cookie to be masked, got %q", stderr.String())
		}
	})

	t.Run("logs to file when requested", func(t *testing.T) {
		t.Parallel()

		var stderr bytes.Buffer
		path := filepath.Join(t.TempDir(), "crawl.log")
		cmd := NewRootCmd()
		cmd.SetErr(&stderr)
		if err := cmd.PersistentFlags().Set("log-file", path); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}

		logger, closeLog, err := setupLogger(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Warn("to file")
		if err := closeLog(); err != nil {
			t.Fatalf("unexpected close error: %v", err)
		}
		if stderr.Len() != 0 {
			t.Errorf("expected nothing on stderr, got %q", stderr.String())
		}
	})

	t.Run("json log format", func(t *testing.T) {
		t.Parallel()

		var stderr bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetErr(&stderr)
		if err := cmd.PersistentFlags().Set("log-format", "json"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}

		logger, closeLog, err := setupLogger(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closeLog()

		logger.Warn("structured", "token", "abc")
		var entry map[string]any
		if err := json.Unmarshal(stderr.Bytes(), &entry); err != nil {
			t.Fatalf("expected one JSON log line, got %q: %v", stderr.String(), err)
		}
		if entry["msg"] != "structured" || entry["token"] != crawllog.MaskValue {
			t.Errorf("unexpected log entry %v", entry)
		}
	})

	t.Run("unknown log format", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		if err := cmd.PersistentFlags().Set("log-format", "xml"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}
		if _, _, err := setupLogger(cmd); !errors.Is(err, errUnknownLogFormat) {
			t.Errorf("expected errUnknownLogFormat, got %v", err)
		}
	})
}
