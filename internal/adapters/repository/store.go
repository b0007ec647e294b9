// Package repository provides the catalog sources: the built-in records, a
// YAML seed file and a SQLite database.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/ingredex/internal/domain/catalog"
	"github.com/okian/ingredex/internal/domain/model"
)

// Source kinds accepted by Open.
const (
	SourceBuiltin = "builtin"
	SourceYAML    = "yaml"
	SourceSQLite  = "sqlite"
)

// BuiltinSource serves the records compiled into the binary.
type BuiltinSource struct{}

// ListAll implements catalog.Source.
func (BuiltinSource) ListAll(context.Context) ([]model.IngredientRecord, error) {
	return catalog.Builtin(), nil
}

// Open returns the source named by kind. The returned close func releases
// any resources and is never nil.
func Open(ctx context.Context, kind, yamlPath, sqlitePath string, opts ...Option) (catalog.Source, func() error, error) {
	noop := func() error { return nil }
	switch kind {
	case SourceBuiltin, "":
		return BuiltinSource{}, noop, nil
	case SourceYAML:
		if yamlPath == "" {
			return nil, noop, fmt.Errorf("%w: yaml", ErrMissingPath)
		}
		return NewYAMLSource(yamlPath), noop, nil
	case SourceSQLite:
		if sqlitePath == "" {
			return nil, noop, fmt.Errorf("%w: sqlite", ErrMissingPath)
		}
		s, err := OpenSQLite(ctx, sqlitePath, opts...)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownSource, kind)
	}
}
