package api

import (
	"errors"
	"net/http"

	"github.com/okian/ingredex/internal/domain/resolver"
	"github.com/okian/ingredex/internal/domain/types"
	"github.com/okian/ingredex/pkg/logger"
)

const notFoundMessage = "Ingredient not found"

// IngredientHandler serves catalog reads and single-ingredient lookups.
type IngredientHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewIngredientHandler creates a new ingredient handler.
func NewIngredientHandler(deps Dependencies, log logger.Logger) *IngredientHandler {
	return &IngredientHandler{deps: deps, log: log}
}

// HandleList handles GET /api/ingredients.
func (h *IngredientHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_ingredients"

	records, err := h.deps.Ingredients(r.Context())
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	out := make([]types.Ingredient, 0, len(records))
	for _, rec := range records {
		out = append(out, types.FromRecord(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /api/ingredients/{name} with optional context
// parameters ageGroup, healthConditions and consumptionFrequency.
func (h *IngredientHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ingredient"

	rc, err := parseContext(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	si, err := h.deps.Lookup(r.Context(), r.PathValue("name"), rc)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			err = WrapKind(op, ErrNotFound, err)
			h.log.Debug(r.Context(), "ingredient not found", logger.String("op", op), logger.Error(err))
			writeJSON(w, http.StatusNotFound, errorResponse{Code: "not_found", Message: notFoundMessage})
			return
		}
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.FromScored(si))
}

// HandleMatches handles GET /api/ingredients/{name}/matches.
func (h *IngredientHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.match_ingredient"

	query := r.PathValue("name")
	matches, err := h.deps.Matches(r.Context(), query)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	if matches == nil {
		matches = []string{}
	}
	writeJSON(w, http.StatusOK, types.MatchesResponse{Query: query, Matches: matches})
}

func (h *IngredientHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error(r.Context(), "request failed",
		logger.String("op", opOf(err)),
		logger.String("path", r.URL.Path),
		logger.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal_error", ErrInternal)
}
