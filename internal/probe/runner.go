package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/ingredex/internal/domain/types"
	"github.com/okian/ingredex/pkg/logger"
)

// ErrUnhealthy is returned when the service does not answer its health check.
var ErrUnhealthy = errors.New("service unhealthy")

// Runner executes probe runs against one server.
type Runner struct {
	cfg    Config
	client *Client
	log    logger.Logger
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(cfg Config, hc *http.Client, log logger.Logger) *Runner {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Rounds < 1 {
		cfg.Rounds = 1
	}
	return &Runner{cfg: cfg, client: NewClient(cfg.BaseURL, hc), log: log}
}

// Run executes the complete probe. It fails when the service is unreachable
// or any answer contradicts the catalog.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	r.log.Info(ctx, "starting ingredex probe",
		logger.String("baseURL", r.cfg.BaseURL),
		logger.Int("rounds", r.cfg.Rounds),
		logger.Int("workers", r.cfg.Workers),
		logger.Duration("timeout", r.cfg.Timeout),
	)

	if err := r.checkHealth(ctx); err != nil {
		return stats, err
	}

	var records []types.Ingredient
	status, err := r.client.getJSON(ctx, "/api/ingredients", nil, &records)
	if err != nil {
		return stats, fmt.Errorf("list ingredients: %w", err)
	}
	if status != http.StatusOK {
		return stats, fmt.Errorf("list ingredients: status %d", status)
	}
	stats.Records = len(records)

	lookups := Generate(records, r.cfg.Rounds, r.cfg.Seed)
	outcomes := r.submit(ctx, lookups)
	r.tally(ctx, outcomes, stats)

	if r.cfg.ImagePath != "" {
		if err := r.scan(ctx, stats); err != nil {
			return stats, err
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	r.log.Info(ctx, "final statistics",
		logger.Int("records", stats.Records),
		logger.Int("lookups", stats.Lookups),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("notFound", stats.NotFound),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Duration("p50", stats.P50),
		logger.Duration("p95", stats.P95),
		logger.Duration("duration", stats.Duration),
	)
	if stats.Violations > 0 || stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d violations, %d failed requests", ErrInconsistent, stats.Violations, stats.Failed)
	}
	return stats, nil
}

func (r *Runner) checkHealth(ctx context.Context) error {
	var body types.HealthResponse
	status, err := r.client.getJSON(ctx, "/api/health", nil, &body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != http.StatusOK || body.Status != "OK" {
		return fmt.Errorf("%w: status %d %q", ErrUnhealthy, status, body.Status)
	}
	r.log.Info(ctx, "service is healthy")
	return nil
}

// submit sends every lookup with at most Workers in flight. Outcomes keep
// the order of lookups.
func (r *Runner) submit(ctx context.Context, lookups []Lookup) []Outcome {
	outcomes := make([]Outcome, len(lookups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, l := range lookups {
		g.Go(func() error {
			outcomes[i] = r.lookup(gctx, l)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (r *Runner) lookup(ctx context.Context, l Lookup) Outcome {
	start := time.Now()
	var in types.Ingredient
	status, err := r.client.getJSON(ctx, "/api/ingredients/"+url.PathEscape(l.Query), url.Values(l.Params), &in)
	return Outcome{
		Lookup:  l,
		Status:  status,
		Name:    in.Name,
		Score:   in.SafetyScore,
		Latency: time.Since(start),
		Err:     err,
	}
}

func (r *Runner) tally(ctx context.Context, outcomes []Outcome, stats *Stats) {
	latencies := make([]time.Duration, 0, len(outcomes))
	for _, o := range outcomes {
		stats.Lookups++
		switch {
		case o.Err != nil:
			stats.Failed++
		case o.Status == http.StatusNotFound:
			stats.NotFound++
		}
		if err := Verify(o); err != nil {
			if o.Err == nil {
				stats.Violations++
			}
			if r.cfg.Verbose {
				r.log.Warn(ctx, "check failed", logger.Error(err))
			}
			continue
		}
		stats.Succeeded++
		latencies = append(latencies, o.Latency)
	}
	stats.P50, stats.P95 = percentiles(latencies)
}

func (r *Runner) scan(ctx context.Context, stats *Stats) error {
	var res types.ScanResponse
	status, err := r.client.upload(ctx, r.cfg.ImagePath, &res)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if status != http.StatusOK || !res.Success {
		return fmt.Errorf("scan: status %d: %s %s", status, res.Message, res.Error)
	}
	stats.Scanned = true
	stats.ScanMatched = len(res.Ingredients)
	r.log.Info(ctx, "label scanned",
		logger.Strings("originalText", res.OriginalText),
		logger.Int("matched", len(res.Ingredients)),
		logger.String("message", res.Message),
	)
	return nil
}
