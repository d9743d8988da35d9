package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	crawllog "github.com/chris00234/web-crawler/internal/log"
)

// Values of the --log-format flag.
const (
	logFormatText = "text"
	logFormatJSON = "json"
)

var errUnknownLogFormat = errors.New("unknown log format")

// NewRootCmd creates the root command for webcrawler.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webcrawler",
		Short: "Domain-restricted web crawler with trap detection",
		Long: `webcrawler crawls pages below a host suffix (default .ics.uci.edu),
skipping crawler traps such as calendars and repeating directories, and
writes a report of what it found.

Crawl progress is checkpointed to a SQLite database so an interrupted crawl
can be resumed and its report re-rendered later.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-file", "", "Write logs to a size-rotated file instead of stderr")
	cmd.PersistentFlags().String("log-format", logFormatText, "Log format: text or json")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogFileFlag retrieves the log-file flag from the command or its parent.
func getLogFileFlag(cmd *cobra.Command) string {
	return getStringFlag(cmd, "log-file", "")
}

// getLogFormatFlag retrieves the log-format flag from the command or its parent.
func getLogFormatFlag(cmd *cobra.Command) string {
	return getStringFlag(cmd, "log-format", logFormatText)
}

func getStringFlag(cmd *cobra.Command, name, fallback string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return fallback
		}
	}
	return v
}

// setupLogger creates the sanitizing logger selected by the global flags.
// The returned close function releases the log file, if any.
func setupLogger(cmd *cobra.Command) (*slog.Logger, func() error, error) {
	verbose := getVerboseFlag(cmd)

	newLogger := crawllog.NewSecureLogger
	switch format := getLogFormatFlag(cmd); format {
	case logFormatText:
	case logFormatJSON:
		newLogger = crawllog.NewSecureJSONLogger
	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnknownLogFormat, format)
	}

	path := getLogFileFlag(cmd)
	if path == "" {
		return newLogger(cmd.ErrOrStderr(), verbose), func() error { return nil }, nil
	}

	w, err := crawllog.NewFileWriter(path, crawllog.DefaultFileOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newLogger(w, verbose), w.Close, nil
}

