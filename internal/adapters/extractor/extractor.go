// Package extractor reads ingredient names off label images using an
// external OCR or vision service.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/ingredex/internal/domain/scancache"
	"github.com/okian/ingredex/pkg/logger"
	"github.com/okian/ingredex/pkg/metrics"
)

// Extractor kinds accepted by New.
const (
	KindNull        = "null"
	KindRekognition = "rekognition"
	KindGemini      = "gemini"
)

const defaultTimeout = 15 * time.Second

// Image is an uploaded label image on local disk.
type Image struct {
	Path     string
	MIMEType string
}

// Extractor returns the raw ingredient strings found in an image.
// Implementations make a single attempt; callers bound them with a deadline.
type Extractor interface {
	Extract(ctx context.Context, img Image) ([]string, error)
	Name() string
}

// Settings selects and configures an extractor.
type Settings struct {
	Kind         string
	Timeout      time.Duration
	AWSRegion    string
	GeminiAPIKey string
	GeminiModel  string
	// CacheSize is how many extractions to remember by image digest. Zero disables the cache.
	CacheSize int
	Logger    logger.Logger
}

// New builds the extractor named by s.Kind wrapped with a timeout and, when
// s.CacheSize is positive, a result cache.
func New(ctx context.Context, s Settings) (Extractor, error) {
	var (
		ex  Extractor
		err error
	)
	switch s.Kind {
	case KindNull, "":
		ex = Null{}
	case KindRekognition:
		ex, err = NewRekognition(ctx, s.AWSRegion)
	case KindGemini:
		ex, err = NewGemini(s.GeminiAPIKey, WithModel(s.GeminiModel))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtractor, s.Kind)
	}
	if err != nil {
		return nil, err
	}
	ex = WithTimeout(ex, s.Timeout, s.Logger)
	if s.CacheSize > 0 {
		ex = WithCache(ex, scancache.NewInMemoryCache(
			scancache.WithMaxSize(s.CacheSize),
			scancache.WithOnResize(metrics.UpdateExtractionCacheEntries),
		), s.Logger)
	}
	return ex, nil
}

// Null returns a fixed ingredient list without looking at the image.
// It is meant for local development.
type Null struct{}

var nullIngredients = []string{"Sugar", "Salt", "Citric Acid", "Ascorbic Acid", "Natural Flavors"}

// Name implements Extractor.
func (Null) Name() string { return KindNull }

// Extract implements Extractor.
func (Null) Extract(context.Context, Image) ([]string, error) {
	out := make([]string, len(nullIngredients))
	copy(out, nullIngredients)
	return out, nil
}

type timed struct {
	next    Extractor
	timeout time.Duration
	log     logger.Logger
}

// WithTimeout bounds every call to ex. Failures, including deadline
// expiry, wrap ErrExtractionFailed and are logged to log when it is set.
func WithTimeout(ex Extractor, timeout time.Duration, log logger.Logger) Extractor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &timed{next: ex, timeout: timeout, log: log}
}

func (t *timed) Name() string { return t.next.Name() }

func (t *timed) Extract(ctx context.Context, img Image) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	names, err := t.next.Extract(ctx, img)
	metrics.RecordExtractionLatency(t.next.Name(), float64(time.Since(start).Milliseconds()))
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		metrics.RecordExtractionFailure(t.next.Name(), reason)
		t.log.Warn(ctx, "label extraction failed",
			logger.String("extractor", t.next.Name()),
			logger.String("reason", reason),
			logger.Error(err))
		if errors.Is(err, ErrExtractionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrExtractionFailed, t.next.Name(), err)
	}
	return names, nil
}
