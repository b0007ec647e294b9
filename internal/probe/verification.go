package probe

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"
)

// Score adjustment bounds for any context: up to two points for children,
// one per flagged condition and one for frequency.
const (
	maxRaise = 1
	maxDrop  = 2 + 3 + 1
)

// ErrInconsistent marks an answer that contradicts the catalog listing.
var ErrInconsistent = errors.New("inconsistent answer")

// Verify checks one outcome against what the catalog listing promised.
func Verify(o Outcome) error {
	if o.Err != nil {
		return o.Err
	}
	if o.Status != http.StatusOK {
		return fmt.Errorf("%w: %q answered %d", ErrInconsistent, o.Lookup.Query, o.Status)
	}
	if o.Name != o.Lookup.Expected {
		return fmt.Errorf("%w: %q resolved to %q, want %q", ErrInconsistent, o.Lookup.Query, o.Name, o.Lookup.Expected)
	}
	if o.Score < 1 || o.Score > 10 {
		return fmt.Errorf("%w: %q scored %d, outside 1..10", ErrInconsistent, o.Lookup.Query, o.Score)
	}
	if len(o.Lookup.Params) == 0 && o.Score != o.Lookup.Base {
		return fmt.Errorf("%w: %q scored %d without context, base is %d", ErrInconsistent, o.Lookup.Query, o.Score, o.Lookup.Base)
	}
	if o.Score > o.Lookup.Base+maxRaise || o.Score < max(1, o.Lookup.Base-maxDrop) {
		return fmt.Errorf("%w: %q scored %d, base %d", ErrInconsistent, o.Lookup.Query, o.Score, o.Lookup.Base)
	}
	return nil
}

// percentiles returns the 50th and 95th percentile latencies.
func percentiles(latencies []time.Duration) (p50, p95 time.Duration) {
	if len(latencies) == 0 {
		return 0, 0
	}
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)
	at := func(q float64) time.Duration {
		i := int(q * float64(len(sorted)-1))
		return sorted[i]
	}
	return at(0.50), at(0.95)
}
