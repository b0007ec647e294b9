// Package probe drives a running ingredex server end to end: it reads the
// catalog, fires concurrent lookups with generated request contexts, checks
// the answers for consistency and optionally scans a label image.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Rounds    int           // Lookups generated per catalog record
	Workers   int           // Number of concurrent requests
	Timeout   time.Duration // HTTP request timeout
	Seed      uint64        // Seed for context generation; runs with equal seeds send equal requests
	ImagePath string        // Optional label image to scan
	Verbose   bool          // Log every failed check
}

// Lookup is one generated request against /api/ingredients/{name}.
type Lookup struct {
	Query    string
	Expected string // catalog name the query was derived from
	Base     int    // base score reported by the catalog listing
	Exact    bool   // Query is the record's own name
	Params   map[string][]string
}

// Outcome is the server's answer to a Lookup.
type Outcome struct {
	Lookup  Lookup
	Status  int
	Name    string
	Score   int
	Latency time.Duration
	Err     error
}

// Stats holds run statistics.
type Stats struct {
	Records     int
	Lookups     int
	Succeeded   int
	NotFound    int
	Failed      int
	Violations  int
	Scanned     bool
	ScanMatched int
	P50, P95    time.Duration
	StartTime   time.Time
	Duration    time.Duration
}
