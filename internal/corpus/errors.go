package corpus

import "errors"

var (
	// ErrInvalidProxy is returned for a proxy URL that cannot be used.
	ErrInvalidProxy = errors.New("invalid proxy URL")

	// ErrBodyTooLarge is returned when a response exceeds the body limit.
	ErrBodyTooLarge = errors.New("response body exceeds limit")

	// ErrNotDirectory is returned when a corpus path is not a directory.
	ErrNotDirectory = errors.New("corpus path is not a directory")
)
