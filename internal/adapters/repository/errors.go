package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrUnknownSource = errors.New("unknown catalog source")
	ErrMissingPath   = errors.New("catalog source path is required")
)
