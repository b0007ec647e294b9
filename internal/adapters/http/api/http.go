// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/ingredex/internal/adapters/extractor"
	"github.com/okian/ingredex/internal/adapters/uploads"
	"github.com/okian/ingredex/internal/domain/model"
	"github.com/okian/ingredex/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Ingredients lists the catalog with base scores.
	Ingredients(ctx context.Context) ([]model.IngredientRecord, error)

	// Lookup resolves and scores one ingredient for an optional context.
	Lookup(ctx context.Context, name string, rc *model.RequestContext) (model.ScoredIngredient, error)

	// Matches lists the catalog names a free-text query may refer to.
	Matches(ctx context.Context, query string) ([]string, error)

	// Scan reads a label image and scores what it finds.
	Scan(ctx context.Context, img extractor.Image, rc *model.RequestContext) (model.ScanResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	ingredientHandler *IngredientHandler
	scanHandler       *ScanHandler
	log               logger.Logger
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithLogger sets the logger used by handlers and panic recovery.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, store *uploads.Store, opts ...ServerOption) *Server {
	s := &Server{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.ingredientHandler = NewIngredientHandler(deps, s.log)
	s.scanHandler = NewScanHandler(deps, store, s.log)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(RecoverMiddleware(h, s.log), endpoint))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleMetrics)
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("GET /api/health", "health", s.healthHandler.HandleHealth)
	route("GET /api/ingredients", "ingredients", s.ingredientHandler.HandleList)
	route("GET /api/ingredients/{name}", "ingredient", s.ingredientHandler.HandleGet)
	route("GET /api/ingredients/{name}/matches", "matches", s.ingredientHandler.HandleMatches)
	route("POST /api/scan/ocr", "scan", s.scanHandler.HandleScan)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
