package report

import "errors"

var (
	// ErrSink is returned, wrapped, when a report cannot be opened or written.
	ErrSink = errors.New("report sink failure")

	// ErrUnknownFormat is returned for a report format that has no writer.
	ErrUnknownFormat = errors.New("unknown report format")
)
