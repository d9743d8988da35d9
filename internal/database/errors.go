package database

import "errors"

var (
	// ErrRunNotFound is returned for a run ID that has no checkpoint.
	ErrRunNotFound = errors.New("run not found")

	// ErrDatabaseNotFound is returned when opening a missing database
	// without CreateIfNotExists.
	ErrDatabaseNotFound = errors.New("database not found")
)
