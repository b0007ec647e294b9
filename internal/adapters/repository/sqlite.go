package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/ingredex/internal/domain/catalog"
	"github.com/okian/ingredex/internal/domain/model"
	"github.com/okian/ingredex/pkg/logger"
)

const (
	aliasTypeAlias   = "alias"
	aliasTypeENumber = "e_number"
)

const schema = `
CREATE TABLE IF NOT EXISTS ingredients (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    position INTEGER NOT NULL,
    name TEXT NOT NULL UNIQUE COLLATE NOCASE,
    scientific_name TEXT NOT NULL DEFAULT '',
    origin TEXT NOT NULL DEFAULT 'unknown',
    purpose TEXT NOT NULL DEFAULT '[]',
    base_safety_score INTEGER,
    base_safety_explanation TEXT NOT NULL DEFAULT '',
    children_note TEXT NOT NULL DEFAULT '',
    health_notes TEXT NOT NULL DEFAULT '{}',
    disclaimer TEXT NOT NULL DEFAULT '',
    regulatory TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS ingredient_aliases (
    ingredient_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    alias TEXT NOT NULL,
    alias_type TEXT NOT NULL CHECK (alias_type IN ('alias', 'e_number')),
    FOREIGN KEY (ingredient_id) REFERENCES ingredients(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_ingredients_position ON ingredients(position);
CREATE INDEX IF NOT EXISTS idx_aliases_ingredient ON ingredient_aliases(ingredient_id);
`

// SQLiteSource stores the catalog in a SQLite database.
type SQLiteSource struct {
	db  *sql.DB
	log logger.Logger
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	s := &SQLiteSource{db: db, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ReplaceAll swaps the stored catalog for records in one transaction.
// Records are validated first; nothing is written if any is invalid.
func (s *SQLiteSource) ReplaceAll(ctx context.Context, records []model.IngredientRecord) error {
	if _, err := catalog.New(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ingredient_aliases`); err != nil {
		return fmt.Errorf("clear aliases: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ingredients`); err != nil {
		return fmt.Errorf("clear ingredients: %w", err)
	}

	const insertIngredient = `
        INSERT INTO ingredients (position, name, scientific_name, origin, purpose,
            base_safety_score, base_safety_explanation, children_note, health_notes,
            disclaimer, regulatory)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	const insertAlias = `
        INSERT INTO ingredient_aliases (ingredient_id, position, alias, alias_type)
        VALUES (?, ?, ?, ?)
    `
	for pos, r := range records {
		purpose, notes, reg, err := encodeColumns(r)
		if err != nil {
			return fmt.Errorf("encode %q: %w", r.Name, err)
		}
		res, err := tx.ExecContext(ctx, insertIngredient,
			pos, r.Name, r.ScientificName, string(r.Origin), purpose,
			r.BaseSafetyScore, r.BaseSafetyExplanation, r.AgeConsiderations.Children,
			notes, r.Disclaimer, reg)
		if err != nil {
			return fmt.Errorf("insert %q: %w", r.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert %q: %w", r.Name, err)
		}
		n := 0
		for _, group := range []struct {
			kind   string
			values []string
		}{{aliasTypeAlias, r.Aliases}, {aliasTypeENumber, r.ENumbers}} {
			for _, v := range group.values {
				if _, err := tx.ExecContext(ctx, insertAlias, id, n, v, group.kind); err != nil {
					return fmt.Errorf("insert alias %q for %q: %w", v, r.Name, err)
				}
				n++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Info(ctx, "catalog replaced", logger.Int("records", len(records)))
	return nil
}

func encodeColumns(r model.IngredientRecord) (purpose, notes, reg string, err error) {
	p := r.Purpose
	if p == nil {
		p = []string{}
	}
	pb, err := json.Marshal(p)
	if err != nil {
		return "", "", "", err
	}
	nb, err := json.Marshal(notesFromModel(r.HealthConditionNotes))
	if err != nil {
		return "", "", "", err
	}
	rb, err := json.Marshal(regulatoryFromModel(r.Regulatory))
	if err != nil {
		return "", "", "", err
	}
	return string(pb), string(nb), string(rb), nil
}

// ListAll implements catalog.Source. Records come back in insertion order.
func (s *SQLiteSource) ListAll(ctx context.Context) ([]model.IngredientRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, scientific_name, origin, purpose, base_safety_score,
            base_safety_explanation, children_note, health_notes, disclaimer, regulatory
        FROM ingredients
        ORDER BY position
    `)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	var records []model.IngredientRecord
	index := make(map[int64]int)
	for rows.Next() {
		var (
			id                      int64
			d                       recordDTO
			score                   sql.NullInt64
			purpose, notes, regJSON string
		)
		if err := rows.Scan(&id, &d.Name, &d.ScientificName, &d.Origin, &purpose, &score,
			&d.BaseSafetyExplanation, &d.AgeConsiderations.Children, &notes, &d.Disclaimer, &regJSON); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		if score.Valid {
			v := int(score.Int64)
			d.BaseSafetyScore = &v
		}
		if err := json.Unmarshal([]byte(purpose), &d.Purpose); err != nil {
			return nil, fmt.Errorf("decode purpose of %q: %w", d.Name, err)
		}
		if err := json.Unmarshal([]byte(notes), &d.HealthConditions); err != nil {
			return nil, fmt.Errorf("decode health notes of %q: %w", d.Name, err)
		}
		if err := json.Unmarshal([]byte(regJSON), &d.Regulatory); err != nil {
			return nil, fmt.Errorf("decode regulatory of %q: %w", d.Name, err)
		}
		rec, err := d.toModel()
		if err != nil {
			return nil, err
		}
		index[id] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}

	if err := s.attachAliases(ctx, records, index); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *SQLiteSource) attachAliases(ctx context.Context, records []model.IngredientRecord, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, `
        SELECT ingredient_id, alias, alias_type
        FROM ingredient_aliases
        ORDER BY ingredient_id, position
    `)
	if err != nil {
		return fmt.Errorf("query aliases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id          int64
			alias, kind string
		)
		if err := rows.Scan(&id, &alias, &kind); err != nil {
			return fmt.Errorf("scan alias: %w", err)
		}
		i, ok := index[id]
		if !ok {
			s.log.Warn(ctx, "alias for missing ingredient", logger.Int("ingredient_id", int(id)))
			continue
		}
		switch kind {
		case aliasTypeENumber:
			records[i].ENumbers = append(records[i].ENumbers, alias)
		default:
			records[i].Aliases = append(records[i].Aliases, alias)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate aliases: %w", err)
	}
	return nil
}

// Count returns the number of stored ingredients.
func (s *SQLiteSource) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingredients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ingredients: %w", err)
	}
	return n, nil
}
