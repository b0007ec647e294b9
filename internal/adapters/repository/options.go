package repository

import "github.com/okian/ingredex/pkg/logger"

// Option applies a configuration option to the SQLiteSource.
type Option func(*SQLiteSource)

// WithLogger sets the logger used for store events.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteSource) {
		if l != nil {
			s.log = l
		}
	}
}
