// Package query turns a free-text request into a generated recipe article.
package query

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/recipewriter/internal/index"
	"github.com/nickcecere/recipewriter/internal/observability"
	"github.com/nickcecere/recipewriter/internal/recipe"
)

// Summary is the fixed summary returned with every generated article.
const Summary = "Professional article generated"

// Retriever finds recipes for a query.
type Retriever interface {
	Search(ctx context.Context, query string, f index.Filter, k int) ([]index.Match, error)
}

// Writer turns retrieved recipes into an article.
type Writer interface {
	Assemble(ctx context.Context, query, cuisine string, count int, recipes []recipe.Recipe) (string, error)
}

// Result is a generated article and what it was built from.
type Result struct {
	HTML    string          `json:"html"`
	Summary string          `json:"summary"`
	Cuisine string          `json:"cuisine"`
	Count   int             `json:"count"`
	Recipes []recipe.Recipe `json:"recipes"`
}

// Service answers article queries.
type Service struct {
	retriever    Retriever
	writer       Writer
	defaultCount int
}

// NewService creates a query service. defaultCount below 1 uses DefaultCount.
func NewService(retriever Retriever, writer Writer, defaultCount int) *Service {
	if defaultCount < 1 {
		defaultCount = DefaultCount
	}
	return &Service{
		retriever:    retriever,
		writer:       writer,
		defaultCount: defaultCount,
	}
}

// HandleQuery retrieves the closest recipes and writes an article about them.
// Failures are returned as *QueryError and are not retried.
func (s *Service) HandleQuery(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	count := ExtractCount(query, s.defaultCount)
	cuisine := ExtractCuisine(query)

	log.Info("Processing query", "query", query, "count", count, "cuisine", cuisine)
	start := time.Now()

	matches, err := s.retriever.Search(ctx, query, index.Filter{}, count)
	if err != nil {
		return nil, s.fail(StageRetrieve, query, err)
	}
	recipes := index.Recipes(matches)
	log.Debug("Retrieved recipes", "found", len(recipes))

	html, err := s.writer.Assemble(ctx, query, cuisine, count, recipes)
	if err != nil {
		return nil, s.fail(StageGenerate, query, err)
	}

	observability.QueriesTotal.WithLabelValues("ok").Inc()
	log.Info("Article generated", "recipes", len(recipes), "duration", time.Since(start).Round(time.Millisecond))

	return &Result{
		HTML:    html,
		Summary: Summary,
		Cuisine: cuisine,
		Count:   count,
		Recipes: recipes,
	}, nil
}

func (s *Service) fail(stage, query string, err error) error {
	observability.QueriesTotal.WithLabelValues(stage).Inc()
	log.Error("Query failed", "stage", stage, "error", err)
	return &QueryError{Stage: stage, Query: query, Err: err}
}
