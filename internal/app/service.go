// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/ingredex/internal/adapters/extractor"
	"github.com/okian/ingredex/internal/adapters/repository"
	"github.com/okian/ingredex/internal/domain/catalog"
	"github.com/okian/ingredex/internal/domain/labeltext"
	"github.com/okian/ingredex/internal/domain/model"
	"github.com/okian/ingredex/internal/domain/resolver"
	"github.com/okian/ingredex/internal/domain/scoring"
	"github.com/okian/ingredex/pkg/logger"
	"github.com/okian/ingredex/pkg/metrics"
)

// Lookup sources, used as metric labels.
const (
	sourceName  = "name"
	sourceLabel = "label"
)

// Service implements the API dependencies for ingredient lookup and scans.
type Service struct {
	mu sync.RWMutex

	// Core components
	source    catalog.Source
	catalog   *catalog.Catalog
	resolver  *resolver.Resolver
	scorer    scoring.Scorer
	extractor extractor.Extractor

	// Configuration
	lookupConcurrency int

	// State
	started   bool
	startedAt time.Time
	lookups   atomic.Int64
	scans     atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where the catalog is loaded from on Start.
func WithSource(src catalog.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithCatalog uses an already built catalog instead of loading one.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(s *Service) {
		if cat != nil {
			s.catalog = cat
		}
	}
}

// WithScorer overrides the default rule scorer.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithExtractor sets the label text extractor.
func WithExtractor(ex extractor.Extractor) Option {
	return func(s *Service) {
		if ex != nil {
			s.extractor = ex
		}
	}
}

// WithLookupConcurrency bounds how many label lookups run at once.
func WithLookupConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.lookupConcurrency = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		source:            repository.BuiltinSource{},
		scorer:            scoring.NewRuleScorer(),
		extractor:         extractor.Null{},
		lookupConcurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the catalog and builds the resolver.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.catalog == nil {
		cat, err := catalog.Load(ctx, s.source)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		s.catalog = cat
	}
	s.resolver = resolver.New(s.catalog)
	metrics.UpdateCatalogRecords(s.catalog.Len())

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "ingredient service started",
		logger.Int("records", s.catalog.Len()),
		logger.String("extractor", s.extractor.Name()),
		logger.Int("lookupConcurrency", s.lookupConcurrency),
	)
	return nil
}

// Stop marks the service stopped. The catalog stays loaded.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "ingredient service stopped")
}

func (s *Service) ready() (*resolver.Resolver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.resolver, nil
}

// Ingredients returns every catalog record in catalog order.
func (s *Service) Ingredients(_ context.Context) ([]model.IngredientRecord, error) {
	if _, err := s.ready(); err != nil {
		return nil, err
	}
	return s.catalog.Records(), nil
}

// Lookup resolves name and scores it for rc. rc may be nil.
func (s *Service) Lookup(ctx context.Context, name string, rc *model.RequestContext) (model.ScoredIngredient, error) {
	r, err := s.ready()
	if err != nil {
		return model.ScoredIngredient{}, err
	}
	s.lookups.Add(1)
	return s.lookup(ctx, r, sourceName, name, rc)
}

func (s *Service) lookup(ctx context.Context, r *resolver.Resolver, source, name string, rc *model.RequestContext) (model.ScoredIngredient, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLookupLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := ctx.Err(); err != nil {
		metrics.RecordLookup(source, "cancelled")
		return model.ScoredIngredient{}, err
	}
	rec, err := r.Resolve(name)
	if err != nil {
		metrics.RecordLookup(source, "not_found")
		return model.ScoredIngredient{}, fmt.Errorf("lookup %q: %w", name, err)
	}
	metrics.RecordLookup(source, "resolved")

	res := s.scorer.Score(rec, rc)
	return model.ScoredIngredient{
		Record:      rec,
		Score:       res.Score,
		Explanation: res.Explanation,
		Education:   s.scorer.Educate(rec, rc),
	}, nil
}

// Matches returns the catalog names query may refer to.
func (s *Service) Matches(_ context.Context, query string) ([]string, error) {
	r, err := s.ready()
	if err != nil {
		return nil, err
	}
	return r.Normalize(query), nil
}

// Scan extracts ingredient names from img and looks each one up. Names that
// do not resolve are dropped; only an extractor failure fails the scan.
func (s *Service) Scan(ctx context.Context, img extractor.Image, rc *model.RequestContext) (model.ScanResult, error) {
	r, err := s.ready()
	if err != nil {
		return model.ScanResult{}, err
	}
	s.scans.Add(1)

	raw, err := s.extractor.Extract(ctx, img)
	if err != nil {
		metrics.RecordScan("extraction_failed")
		if !errors.Is(err, extractor.ErrExtractionFailed) {
			err = fmt.Errorf("%w: %w", extractor.ErrExtractionFailed, err)
		}
		return model.ScanResult{}, err
	}

	original := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			original = append(original, t)
		}
	}
	candidates := labeltext.Candidates(original)

	found := make([]*model.ScoredIngredient, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lookupConcurrency)
	for i, name := range candidates {
		g.Go(func() error {
			si, err := s.lookup(gctx, r, sourceLabel, name, rc)
			if err != nil {
				if errors.Is(err, resolver.ErrNotFound) {
					s.logger.Debug(gctx, "label ingredient not in catalog", logger.String("name", name))
				} else {
					s.logger.Warn(gctx, "label ingredient lookup failed",
						logger.String("name", name), logger.Error(err))
				}
				return nil
			}
			found[i] = &si
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{}, len(found))
	matched := make([]model.ScoredIngredient, 0, len(found))
	for _, si := range found {
		if si == nil {
			continue
		}
		if _, dup := seen[si.Record.Name]; dup {
			continue
		}
		seen[si.Record.Name] = struct{}{}
		matched = append(matched, *si)
	}

	metrics.RecordScan("success")
	metrics.RecordScanNames(len(original), len(matched))
	s.logger.Info(ctx, "label scanned",
		logger.Int("extracted", len(original)),
		logger.Int("matched", len(matched)),
	)
	return model.ScanResult{OriginalText: original, Ingredients: matched}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"extractor":         s.extractor.Name(),
		"lookupConcurrency": s.lookupConcurrency,
		"lookups":           s.lookups.Load(),
		"scans":             s.scans.Load(),
	}
	if s.catalog != nil {
		stats["catalogRecords"] = s.catalog.Len()
		metrics.UpdateCatalogRecords(s.catalog.Len())
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}
	return stats
}
