// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and INGREDEX_ env vars.
// - Errors wrap this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"
)

// Accepted values for enumerated settings.
var (
	catalogSources = []string{"builtin", "yaml", "sqlite"}
	extractorKinds = []string{"null", "rekognition", "gemini"}
	logFormats     = []string{"text", "json"}
	logLevels      = []string{"debug", "info", "warn", "error"}
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogSource picks where ingredient records come from: builtin, yaml or sqlite.
	CatalogSource string `koanf:"catalog_source"`

	// CatalogFile is the YAML seed file used by the yaml source and cmd/seed.
	CatalogFile string `koanf:"catalog_file"`

	// SQLitePath is the database file used by the sqlite source.
	SQLitePath string `koanf:"sqlite_path"`

	// Extractor picks the label reader: null, rekognition or gemini.
	Extractor string `koanf:"extractor"`

	// ExtractorTimeoutMS bounds a single extraction call.
	ExtractorTimeoutMS int `koanf:"extractor_timeout_ms"`

	// ExtractCacheSize is how many label extractions are remembered by image
	// digest. Zero disables the cache.
	ExtractCacheSize int `koanf:"extract_cache_size"`

	// AWSRegion is used by the rekognition extractor.
	AWSRegion string `koanf:"aws_region"`

	// GeminiAPIKey and GeminiModel configure the gemini extractor.
	GeminiAPIKey string `koanf:"gemini_api_key"`
	GeminiModel  string `koanf:"gemini_model"`

	// UploadDir holds label images while a scan runs. Empty means the system temp dir.
	UploadDir string `koanf:"upload_dir"`

	// MaxUploadBytes caps the size of an uploaded image.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// LookupConcurrency bounds parallel catalog lookups within one scan.
	LookupConcurrency int `koanf:"lookup_concurrency"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":5001",
		CatalogSource:      "builtin",
		CatalogFile:        "data/ingredients.yaml",
		SQLitePath:         "ingredex.db",
		Extractor:          "null",
		ExtractorTimeoutMS: 15_000,
		ExtractCacheSize:   256,
		GeminiModel:        "gemini-1.5-flash",
		MaxUploadBytes:     5 << 20,
		LookupConcurrency:  runtime.NumCPU(),
	}
}

// ExtractorTimeout returns ExtractorTimeoutMS as a duration.
func (c *Config) ExtractorTimeout() time.Duration {
	return time.Duration(c.ExtractorTimeoutMS) * time.Millisecond
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains(logLevels, c.LogLevel):
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	case !slices.Contains(logFormats, c.LogFormat):
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case !slices.Contains(catalogSources, c.CatalogSource):
		return fmt.Errorf("%w: catalog_source %q", ErrInvalidConfig, c.CatalogSource)
	case c.CatalogSource == "yaml" && c.CatalogFile == "":
		return fmt.Errorf("%w: catalog_file is required for the yaml source", ErrInvalidConfig)
	case c.CatalogSource == "sqlite" && c.SQLitePath == "":
		return fmt.Errorf("%w: sqlite_path is required for the sqlite source", ErrInvalidConfig)
	case !slices.Contains(extractorKinds, c.Extractor):
		return fmt.Errorf("%w: extractor %q", ErrInvalidConfig, c.Extractor)
	case c.Extractor == "gemini" && c.GeminiAPIKey == "":
		return fmt.Errorf("%w: gemini_api_key is required for the gemini extractor", ErrInvalidConfig)
	case c.ExtractorTimeoutMS <= 0:
		return fmt.Errorf("%w: extractor_timeout_ms must be positive", ErrInvalidConfig)
	case c.ExtractCacheSize < 0:
		return fmt.Errorf("%w: extract_cache_size must not be negative", ErrInvalidConfig)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case c.LookupConcurrency <= 0:
		return fmt.Errorf("%w: lookup_concurrency must be positive", ErrInvalidConfig)
	}
	return nil
}
