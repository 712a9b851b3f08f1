package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/recipewriter/internal/query"
	"github.com/nickcecere/recipewriter/internal/search"
)

// maxBodySize bounds the /recipe-query request body.
const maxBodySize = 1 << 20

// QueryHandler produces an article for a query.
type QueryHandler interface {
	HandleQuery(ctx context.Context, query string) (*query.Result, error)
}

// Handlers serves the recipe API.
type Handlers struct {
	queries QueryHandler
	library search.Source
}

// NewHandlers creates the API handlers.
func NewHandlers(queries QueryHandler, library search.Source) *Handlers {
	return &Handlers{queries: queries, library: library}
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Success bool   `json:"success"`
	HTML    string `json:"html"`
	Summary string `json:"summary"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Recipes int    `json:"recipes"`
}

// HandleHealth reports liveness and the number of loaded recipes. It never
// loads the library; until the first query loads it the count is zero.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	recipes := 0
	if lib := h.library.Current(); lib != nil {
		recipes = lib.Size()
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Message: "Recipe API server is running",
		Recipes: recipes,
	})
}

// HandleRecipeQuery generates an article for the posted query.
func (h *Handlers) HandleRecipeQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		if err != nil {
			log.Debug("Invalid query body", "error", err)
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Query is required"})
		return
	}

	result, err := h.queries.HandleQuery(r.Context(), req.Query)
	if err != nil {
		var qerr *query.QueryError
		if errors.As(err, &qerr) {
			log.Error("Query failed", "stage", qerr.Stage, "request_id", RequestIDFromContext(r.Context()))
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to generate recipe content",
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Success: true,
		HTML:    result.HTML,
		Summary: result.Summary,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("Failed to write response", "error", err)
	}
}
