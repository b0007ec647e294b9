package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/okian/ingredex/internal/domain/scancache"
	"github.com/okian/ingredex/pkg/logger"
	"github.com/okian/ingredex/pkg/metrics"
)

type cached struct {
	next  Extractor
	cache scancache.Cache
	log   logger.Logger
}

// WithCache serves repeat uploads of the same image from cache instead of
// calling ex again. Only successful extractions are stored.
func WithCache(ex Extractor, cache scancache.Cache, log logger.Logger) Extractor {
	if log == nil {
		log = logger.Nop()
	}
	return &cached{next: ex, cache: cache, log: log}
}

func (c *cached) Name() string { return c.next.Name() }

func (c *cached) Extract(ctx context.Context, img Image) ([]string, error) {
	digest, err := fileDigest(img.Path)
	if err != nil {
		c.log.Debug(ctx, "image digest unavailable, skipping cache", logger.Error(err))
		return c.next.Extract(ctx, img)
	}
	if names, ok := c.cache.Get(ctx, digest); ok {
		metrics.RecordExtractionCache("hit")
		return names, nil
	}
	metrics.RecordExtractionCache("miss")

	names, err := c.next.Extract(ctx, img)
	if err != nil {
		return nil, err
	}
	c.cache.Put(ctx, digest, names)
	return names, nil
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash image: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
