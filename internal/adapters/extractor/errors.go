package extractor

import "errors"

// Sentinel kinds for extractor errors.
var (
	ErrExtractionFailed = errors.New("extraction failed")
	ErrUnknownExtractor = errors.New("unknown extractor")
	ErrMissingAPIKey    = errors.New("missing api key")
)
