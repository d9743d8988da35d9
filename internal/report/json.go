package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chris00234/web-crawler/internal/model"
)

// JSONWriter outputs the crawl report as one JSON document.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
// Output is compact unless WithPrettyPrint is given.
func NewJSONWriter(output io.Writer, opts ...Option) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output, opts)}
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	BestLinkPage model.PageStat `json:"best_link_page"`
	BestWordPage model.PageStat `json:"best_word_page"`

	// TopWords is ranked and free of stop words.
	TopWords []model.Count `json:"top_words"`

	// Subdomains excludes www.
	Subdomains []model.Count `json:"subdomains"`

	Traps    []string `json:"traps"`
	Accepted []string `json:"accepted"`
}

// NewJSONReport derives the report sections from snap.
func NewJSONReport(snap *model.Snapshot, top int) *JSONReport {
	snap = snapshotOrEmpty(snap)
	return &JSONReport{
		BestLinkPage: snap.BestLinkPage,
		BestWordPage: snap.BestWordPage,
		TopWords:     TopWords(snap, top),
		Subdomains:   Subdomains(snap),
		Traps:        nonNil(snap.Traps),
		Accepted:     nonNil(snap.Accepted),
	}
}

// Write outputs the report in JSON.
func (w *JSONWriter) Write(snap *model.Snapshot) (int, error) {
	doc := NewJSONReport(snap, w.top)

	var data []byte
	var err error
	if w.indent != "" {
		data, err = json.MarshalIndent(doc, "", w.indent)
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report: %w", err)
	}

	data = append(data, '\n')
	return w.emit(data)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
