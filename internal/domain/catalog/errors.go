package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrInvalidRecord = errors.New("invalid ingredient record")
	ErrEmptyCatalog  = errors.New("catalog has no records")
)
