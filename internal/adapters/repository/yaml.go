package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/ingredex/internal/domain/model"
)

type seedFile struct {
	Ingredients []recordDTO `yaml:"ingredients"`
}

// YAMLSource reads the catalog from a YAML seed file on every ListAll.
type YAMLSource struct {
	path string
}

// NewYAMLSource creates a source for the seed file at path.
func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

// ListAll implements catalog.Source.
func (s *YAMLSource) ListAll(ctx context.Context) ([]model.IngredientRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return DecodeYAML(f)
}

// DecodeYAML parses a seed document. Unknown keys are rejected so typos in
// hand-written seed files surface at load time.
func DecodeYAML(r io.Reader) ([]model.IngredientRecord, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc seedFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	out := make([]model.IngredientRecord, 0, len(doc.Ingredients))
	for i, d := range doc.Ingredients {
		rec, err := d.toModel()
		if err != nil {
			return nil, fmt.Errorf("ingredient %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// EncodeYAML writes records in the seed document format.
func EncodeYAML(w io.Writer, records []model.IngredientRecord) error {
	doc := seedFile{Ingredients: make([]recordDTO, 0, len(records))}
	for _, r := range records {
		doc.Ingredients = append(doc.Ingredients, recordFromModel(r))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode seed file: %w", err)
	}
	return enc.Close()
}
