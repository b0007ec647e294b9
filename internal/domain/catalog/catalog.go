// Package catalog holds the validated, read-only set of ingredient records
// the resolver searches. A Catalog is built once and never mutated.
package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/okian/ingredex/internal/domain/model"
)

const (
	minScore = 1
	maxScore = 10
)

var eNumberPattern = regexp.MustCompile(`(?i)^E\d+$`)

// Source lists every record from some backing store, in catalog order.
type Source interface {
	ListAll(ctx context.Context) ([]model.IngredientRecord, error)
}

// Catalog is an ordered, immutable list of ingredient records.
type Catalog struct {
	records []model.IngredientRecord
}

// New validates records and builds a Catalog. Order is preserved and is the
// order the resolver uses to break ties.
func New(records []model.IngredientRecord) (*Catalog, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCatalog
	}
	seen := make(map[string]int, len(records))
	out := make([]model.IngredientRecord, 0, len(records))
	for i, r := range records {
		if err := Validate(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		key := strings.ToLower(strings.TrimSpace(r.Name))
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: name %q repeats record %d", ErrInvalidRecord, r.Name, prev)
		}
		seen[key] = i
		out = append(out, r.Clone())
	}
	return &Catalog{records: out}, nil
}

// Load reads all records from src and builds a Catalog.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	records, err := src.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog records: %w", err)
	}
	return New(records)
}

// Validate checks the record invariants.
func Validate(r model.IngredientRecord) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}
	if r.BaseSafetyScore < minScore || r.BaseSafetyScore > maxScore {
		return fmt.Errorf("%w: %q base safety score %d outside [%d,%d]",
			ErrInvalidRecord, r.Name, r.BaseSafetyScore, minScore, maxScore)
	}
	for _, a := range r.Aliases {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("%w: %q has an empty alias", ErrInvalidRecord, r.Name)
		}
	}
	for _, e := range r.ENumbers {
		if !eNumberPattern.MatchString(strings.TrimSpace(e)) {
			return fmt.Errorf("%w: %q has malformed E-number %q", ErrInvalidRecord, r.Name, e)
		}
	}
	for c, n := range r.HealthConditionNotes {
		parsed, ok := model.ParseCondition(string(c))
		if !ok {
			return fmt.Errorf("%w: %q has unknown health condition %q", ErrInvalidRecord, r.Name, c)
		}
		// Scoring looks notes up by the canonical key only.
		if parsed != c {
			return fmt.Errorf("%w: %q health condition %q must be written %q", ErrInvalidRecord, r.Name, c, parsed)
		}
		switch n.Impact {
		case "", model.ImpactConcern, model.ImpactFavorable:
		default:
			return fmt.Errorf("%w: %q has unknown note impact %q", ErrInvalidRecord, r.Name, n.Impact)
		}
	}
	return nil
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.records) }

// At returns a copy of the i-th record.
func (c *Catalog) At(i int) model.IngredientRecord { return c.records[i].Clone() }

// Records returns copies of all records in catalog order.
func (c *Catalog) Records() []model.IngredientRecord {
	out := make([]model.IngredientRecord, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out
}

// ListAll lets a Catalog act as a Source.
func (c *Catalog) ListAll(context.Context) ([]model.IngredientRecord, error) {
	return c.Records(), nil
}
