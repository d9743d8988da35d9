package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/chris00234/web-crawler/internal/config"
	"github.com/chris00234/web-crawler/internal/database"
)

// NewRunsCmd creates the runs command.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List checkpointed crawl runs",
		Long: `Runs lists every crawl run recorded in the checkpoint database,
newest first, as a Markdown table.

Examples:
  # List runs
  webcrawler runs

  # Remove a run and its checkpoint
  webcrawler runs --delete 6f1c2a9e-...`,
		Args: cobra.NoArgs,
		RunE: runRunsCmd,
	}

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Checkpoint database directory")
	cmd.Flags().String("delete", "",
		"Delete the run with this ID and its checkpoint")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	deleteID, err := cmd.Flags().GetString("delete")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if deleteID != "" {
		if err := db.DeleteRun(cmd.Context(), deleteID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", deleteID)
		return nil
	}

	runs, err := db.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			formatTime(run.StartedAt),
			runStatus(run),
			strconv.Itoa(run.Fetched),
			strconv.Itoa(run.Accepted),
			strconv.Itoa(run.Traps),
			strings.Join(run.Seeds, " "),
		})
	}

	return markdown.NewMarkdown(cmd.OutOrStdout()).
		Table(markdown.TableSet{
			Header: []string{"Run", "Started", "Status", "Fetched", "Accepted", "Traps", "Seeds"},
			Rows:   rows,
		}).
		Build()
}

func runStatus(run database.Run) string {
	if run.Finished() {
		return "finished"
	}
	return "resumable"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
