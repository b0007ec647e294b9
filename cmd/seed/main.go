// Command seed loads ingredient records from a YAML seed file (or the
// built-in catalog), validates them and writes them into the SQLite catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/ingredex/internal/adapters/repository"
	"github.com/okian/ingredex/internal/config"
	"github.com/okian/ingredex/internal/domain/catalog"
	"github.com/okian/ingredex/internal/domain/model"
	"github.com/okian/ingredex/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	var (
		from   = fs.String("from", repository.SourceYAML, "Where records come from: yaml or builtin")
		file   = fs.String("file", cfg.CatalogFile, "YAML seed file")
		dbPath = fs.String("db", cfg.SQLitePath, "SQLite database to write")
		dump   = fs.Bool("dump", false, "Write the records as YAML to stdout instead of the database")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	log := logger.Get()

	records, err := load(ctx, *from, *file)
	if err != nil {
		return err
	}
	if _, err := catalog.New(records); err != nil {
		return fmt.Errorf("validate records: %w", err)
	}

	if *dump {
		return repository.EncodeYAML(os.Stdout, records)
	}

	db, err := repository.OpenSQLite(ctx, *dbPath, repository.WithLogger(log))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ReplaceAll(ctx, records); err != nil {
		return err
	}
	n, err := db.Count(ctx)
	if err != nil {
		return err
	}
	log.Info(ctx, "catalog seeded",
		logger.String("from", *from),
		logger.String("db", *dbPath),
		logger.Int("records", n),
	)
	return nil
}

func load(ctx context.Context, from, file string) ([]model.IngredientRecord, error) {
	switch from {
	case repository.SourceBuiltin:
		return catalog.Builtin(), nil
	case repository.SourceYAML:
		if file == "" {
			return nil, errors.New("-file is required for yaml seeds")
		}
		return repository.NewYAMLSource(file).ListAll(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownSource, from)
	}
}
