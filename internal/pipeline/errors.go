package pipeline

import "errors"

var (
	// ErrFetch wraps failures reported by the corpus.
	ErrFetch = errors.New("fetch failed")

	// ErrNoResult is returned when a step needs a fetch result that is missing.
	ErrNoResult = errors.New("task has no fetch result")
)
