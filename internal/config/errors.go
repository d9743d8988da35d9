package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoSeed is returned when no seed URL is given.
	ErrNoSeed = errors.New("no seed URL specified")

	// ErrEmptyScope is returned when the scope suffix is empty.
	ErrEmptyScope = errors.New("invalid scope: must not be empty")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidThreshold is returned when a trap threshold is not positive.
	ErrInvalidThreshold = errors.New("invalid trap threshold: must be positive")

	// ErrInvalidTopWords is returned when the report word count is not positive.
	ErrInvalidTopWords = errors.New("invalid top words: must be positive")

	// ErrInvalidRate is returned when the request rate is negative.
	ErrInvalidRate = errors.New("invalid rate: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidCheckpointInterval is returned when the checkpoint interval is negative.
	ErrInvalidCheckpointInterval = errors.New("invalid checkpoint interval: must be non-negative")

	// ErrInvalidReportFormat is returned for an unknown report format.
	ErrInvalidReportFormat = errors.New("invalid report format: use text, markdown or json")
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
