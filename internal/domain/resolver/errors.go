package resolver

import "errors"

// ErrNotFound is returned when no catalog record matches a query.
var ErrNotFound = errors.New("ingredient not found")
