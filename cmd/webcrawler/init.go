package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chris00234/web-crawler/internal/config"
)

//go:embed templates/webcrawler.yaml
var configTemplate embed.FS

// templateName is the embedded configuration template.
const templateName = "templates/webcrawler.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented webcrawler configuration file",
		Long: `Init writes a configuration file listing every setting with its default.
Crawl picks up .webcrawler.yaml from the working directory, or config.yaml
from the webcrawler XDG config directory.

Examples:
  # Create .webcrawler.yaml in current directory
  webcrawler init

  # Create the per-user configuration
  webcrawler init -o ~/.config/webcrawler/config.yaml

  # Replace an existing file
  webcrawler init -f

  # Print the template instead of writing it
  webcrawler init --stdout`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Path of the configuration file to write")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite an existing file")
	cmd.Flags().Bool("stdout", false,
		"Print the template to stdout")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	content, err := configTemplate.ReadFile(templateName)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	if toStdout {
		_, err := cmd.OutOrStdout().Write(content)
		return err
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flag |= os.O_EXCL
	}
	f, err := os.OpenFile(outputPath, flag, 0600) //nolint:gosec // path chosen by the user
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
	}
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	return nil
}
