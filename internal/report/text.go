package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chris00234/web-crawler/internal/model"
)

// sectionSeparator precedes every section after the first.
var sectionSeparator = "\n" + strings.Repeat("-", 81) + "\n"

// TextWriter outputs the plain-text crawl report.
// Label and count are separated by a single tab.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...Option) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output, opts)}
}

// Write outputs the report in plain text.
func (w *TextWriter) Write(snap *model.Snapshot) (int, error) {
	snap = snapshotOrEmpty(snap)

	var sb strings.Builder

	sb.WriteString("URL with most links:\n")
	fmt.Fprintf(&sb, "%s with a total of %d valid links.\n", snap.BestLinkPage.URL, snap.BestLinkPage.Count)

	sb.WriteString(sectionSeparator)
	sb.WriteString("URL with most words:\n")
	fmt.Fprintf(&sb, "%s with a total of %d valid words.\n", snap.BestWordPage.URL, snap.BestWordPage.Count)

	sb.WriteString(sectionSeparator)
	fmt.Fprintf(&sb, "The %d most common words in all pages content:\n", w.top)
	writeCounts(&sb, TopWords(snap, w.top))

	sb.WriteString(sectionSeparator)
	sb.WriteString("Subdomains and amount of processed urls:\n")
	writeCounts(&sb, Subdomains(snap))

	sb.WriteString(sectionSeparator)
	sb.WriteString("URLs that were considered a trap:\n")
	writeLines(&sb, snap.Traps)

	sb.WriteString(sectionSeparator)
	sb.WriteString("URLs that were identified:\n")
	writeLines(&sb, snap.Accepted)

	return w.emit([]byte(sb.String()))
}

func writeCounts(sb *strings.Builder, counts []model.Count) {
	for _, c := range counts {
		sb.WriteString(c.Key)
		sb.WriteByte('\t')
		sb.WriteString(strconv.Itoa(c.Count))
		sb.WriteByte('\n')
	}
}

func writeLines(sb *strings.Builder, lines []string) {
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}
