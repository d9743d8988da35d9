package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chris00234/web-crawler/internal/model"
)

// Format names an output format.
type Format string

const (
	// FormatText is the canonical plain-text report.
	FormatText Format = "text"

	// FormatMarkdown is a Markdown report with a subdomain chart.
	FormatMarkdown Format = "markdown"

	// FormatJSON is a JSON document.
	FormatJSON Format = "json"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatJSON}
}

// ParseFormat maps a case-insensitive name to a Format.
// "txt" and "md" are accepted as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text", "txt", "":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ParseFormats parses a comma-separated list of format names.
// Repeated formats are listed once.
func ParseFormats(list string) ([]Format, error) {
	var formats []Format
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" && list != "" {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, list)
		}
		f, err := ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// Extension returns the file extension used for f, with its dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// FormatPaths returns the file each format is written to. A single format
// goes to path itself. With several, each replaces the extension of path
// with its own, so "out/report.txt" becomes report.txt, report.md and
// report.json.
func FormatPaths(path string, formats []Format) []string {
	if len(formats) == 1 {
		return []string{path}
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	paths := make([]string, len(formats))
	for i, f := range formats {
		paths[i] = base + f.Extension()
	}
	return paths
}

// NewWriter returns the Writer for format.
func NewWriter(format Format, output io.Writer, opts ...Option) (Writer, error) {
	switch format {
	case FormatText:
		return NewTextWriter(output, opts...), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output, opts...), nil
	case FormatJSON:
		return NewJSONWriter(output, append([]Option{WithPrettyPrint()}, opts...)...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile renders snap to path, creating parent directories as needed.
// The file is truncated if it exists. Open, write and close failures wrap
// ErrSink.
func WriteFile(path string, format Format, snap *model.Snapshot, opts ...Option) error {
	_, err := WriteFiles(path, []Format{format}, snap, opts...)
	return err
}

// WriteFiles renders snap once per format into the files named by
// FormatPaths and returns those paths. All files are opened before
// anything is written.
func WriteFiles(path string, formats []Format, snap *model.Snapshot, opts ...Option) (paths []string, err error) {
	if len(formats) == 0 {
		return nil, fmt.Errorf("%w: no format given", ErrUnknownFormat)
	}
	for _, f := range formats {
		if !slices.Contains(Formats(), f) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}
	paths = FormatPaths(path, formats)

	files := make([]*os.File, 0, len(paths))
	defer func() {
		for _, f := range files {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("%w: failed to close report file: %w", ErrSink, cerr)
			}
		}
	}()

	writers := make([]Writer, 0, len(paths))
	for i, p := range paths {
		f, err := createReportFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)

		w, err := NewWriter(formats[i], f, opts...)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}

	if _, err := NewMultiWriter(writers...).Write(snap); err != nil {
		if errors.Is(err, ErrSink) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return paths, nil
}

func createReportFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("%w: failed to create report directory: %w", ErrSink, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create report file: %w", ErrSink, err)
	}
	return f, nil
}
