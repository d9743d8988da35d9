package report

import (
	"fmt"
	"io"

	"github.com/chris00234/web-crawler/internal/model"
)

// DefaultTopWords is how many words the frequency section lists.
const DefaultTopWords = 50

// Writer renders a snapshot to its configured destination.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	// Destination failures wrap ErrSink.
	Write(snap *model.Snapshot) (int, error)
}

// MultiWriter writes the same snapshot to several Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every Writer in order.
// It stops on the first error.
func (m *MultiWriter) Write(snap *model.Snapshot) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(snap)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Option configures any of the writers in this package.
type Option func(*baseWriter)

// WithTopWords sets how many words the frequency section lists.
func WithTopWords(n int) Option {
	return func(b *baseWriter) {
		if n > 0 {
			b.top = n
		}
	}
}

// WithPrettyPrint indents JSON output. Other formats ignore it.
func WithPrettyPrint() Option {
	return func(b *baseWriter) {
		b.indent = "  "
	}
}

// baseWriter holds what every writer shares.
type baseWriter struct {
	output io.Writer
	top    int
	indent string
}

func newBaseWriter(output io.Writer, opts []Option) baseWriter {
	b := baseWriter{output: output, top: DefaultTopWords}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// emit writes data to the output and wraps failures in ErrSink.
func (b *baseWriter) emit(data []byte) (int, error) {
	n, err := b.output.Write(data)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrSink, err)
	}
	return n, nil
}

// snapshotOrEmpty substitutes an empty snapshot for nil.
func snapshotOrEmpty(snap *model.Snapshot) *model.Snapshot {
	if snap == nil {
		return model.NewSnapshot()
	}
	return snap
}
