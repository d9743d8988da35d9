package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chris00234/web-crawler/internal/config"
	"github.com/chris00234/web-crawler/internal/database"
	"github.com/chris00234/web-crawler/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Render the report of a checkpointed run",
		Long: `Report renders the crawl report from the latest checkpoint of a run,
without crawling. Without a run ID the most recent run is used.

Examples:
  # Print the latest run as text
  webcrawler report

  # Write a Markdown report of a specific run
  webcrawler report -f markdown -o report.md 6f1c2a9e-...

  # Write report.txt, report.md and report.json
  webcrawler report -f text,markdown,json -o report.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("format", "f", config.DefaultReportFormat,
		"Report format: text, markdown or json; a comma-separated list writes every format")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file instead of stdout")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Checkpoint database directory")
	cmd.Flags().Int("top", config.DefaultTopWords,
		"Number of most common words in the report")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	formats, err := report.ParseFormats(formatName)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id := ""
	if len(args) == 1 {
		id = args[0]
	}
	ctx := cmd.Context()
	run, err := findRun(ctx, db, id)
	if err != nil {
		return err
	}
	cp, err := db.LoadState(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	opts := []report.Option{report.WithTopWords(top)}
	if output != "" {
		paths, err := report.WriteFiles(output, formats, cp.State, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", strings.Join(paths, ", "))
		return nil
	}

	writers := make([]report.Writer, 0, len(formats))
	for _, format := range formats {
		w, err := report.NewWriter(format, cmd.OutOrStdout(), opts...)
		if err != nil {
			return err
		}
		writers = append(writers, w)
	}
	_, err = report.NewMultiWriter(writers...).Write(cp.State)
	return err
}
