// Package resolver maps free-text ingredient names onto catalog records.
//
// Matching happens in two phases. The exact phase compares the normalized
// query against each record's name, scientific name, aliases and E-numbers
// and the first record in catalog order wins. The containment phase is only
// consulted by Normalize when the exact phase finds nothing.
package resolver

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/ingredex/internal/domain/catalog"
	"github.com/okian/ingredex/internal/domain/model"
)

type entry struct {
	display    string
	name       string
	scientific string
	aliases    []string
	eNumbers   []string
}

func (e entry) exact(q string) bool {
	if e.name == q || (e.scientific != "" && e.scientific == q) {
		return true
	}
	for _, a := range e.aliases {
		if a == q {
			return true
		}
	}
	for _, n := range e.eNumbers {
		if n == q {
			return true
		}
	}
	return false
}

func (e entry) contains(q string) bool {
	if strings.Contains(e.name, q) || strings.Contains(q, e.name) {
		return true
	}
	for _, a := range e.aliases {
		if strings.Contains(a, q) || strings.Contains(q, a) {
			return true
		}
	}
	return false
}

// Resolver answers name lookups against one catalog. It is safe for
// concurrent use.
type Resolver struct {
	cat     *catalog.Catalog
	entries []entry
}

// New precomputes normalized keys for every record in cat.
func New(cat *catalog.Catalog) *Resolver {
	r := &Resolver{cat: cat, entries: make([]entry, cat.Len())}
	for i, rec := range cat.Records() {
		e := entry{
			display:    rec.Name,
			name:       Key(rec.Name),
			scientific: Key(rec.ScientificName),
		}
		for _, a := range rec.Aliases {
			if k := Key(a); k != "" {
				e.aliases = append(e.aliases, k)
			}
		}
		for _, n := range rec.ENumbers {
			if k := Key(n); k != "" {
				e.eNumbers = append(e.eNumbers, k)
			}
		}
		r.entries[i] = e
	}
	return r
}

// Key normalizes s for comparison: NFKC, trimmed, case folded.
func Key(s string) string {
	s = strings.TrimSpace(norm.NFKC.String(s))
	if s == "" {
		return ""
	}
	// A Caser is stateful; build one per call.
	return cases.Fold().String(s)
}

// Resolve returns the first record whose name, scientific name, alias or
// E-number equals query. It never falls back to containment matching.
func (r *Resolver) Resolve(query string) (model.IngredientRecord, error) {
	q := Key(query)
	if q == "" {
		return model.IngredientRecord{}, ErrNotFound
	}
	for i, e := range r.entries {
		if e.exact(q) {
			return r.cat.At(i), nil
		}
	}
	return model.IngredientRecord{}, ErrNotFound
}

// Normalize returns the names of every record the query could refer to.
// When any record matches exactly, only the exact matches are returned;
// otherwise records are matched by containment in either direction against
// the name or any alias. Names come back in catalog order without repeats.
func (r *Resolver) Normalize(query string) []string {
	q := Key(query)
	if q == "" {
		return nil
	}
	var idx []int
	for i, e := range r.entries {
		if e.exact(q) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		for i, e := range r.entries {
			if e.contains(q) {
				idx = append(idx, i)
			}
		}
	}
	seen := make(map[string]struct{}, len(idx))
	names := make([]string, 0, len(idx))
	for _, i := range idx {
		name := r.entries[i].display
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
