package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/ingredex/internal/probe"
	"github.com/okian/ingredex/pkg/logger"
)

// Default configuration constants.
const (
	defaultRounds       = 20
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:5001", "Base URL of the service")
		rounds  = flag.Int("rounds", defaultRounds, "Lookups generated per catalog record")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent requests")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed    = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed for generated request contexts")
		image   = flag.String("image", "", "Label image to scan after the lookups")
		format  = flag.String("log-format", "text", "Log format: text or json")
		verbose = flag.Bool("verbose", false, "Log every failed check")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	runner := probe.NewRunner(probe.Config{
		BaseURL:   *baseURL,
		Rounds:    *rounds,
		Workers:   *workers,
		Timeout:   *timeout,
		Seed:      *seed,
		ImagePath: *image,
		Verbose:   *verbose,
	}, nil, logger.Get())

	if _, err := runner.Run(ctx); err != nil {
		logger.Get().Error(ctx, "probe failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
