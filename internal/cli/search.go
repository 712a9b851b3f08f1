package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/recipewriter/internal/config"
	"github.com/nickcecere/recipewriter/internal/index"
	"github.com/nickcecere/recipewriter/internal/search"
	"github.com/nickcecere/recipewriter/internal/ui"
)

var (
	searchLimit    int
	searchCategory string
	searchTags     []string
	searchJSON     bool
	searchCatalog  bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find the recipes closest to a query",
	Long: `Search the recipe library by semantic similarity without generating an article.

Results are ordered by Euclidean distance between the query embedding and each
recipe embedding; smaller is closer.

Examples:
  # Basic search
  recipewriter search "weeknight curry"

  # Only Italian recipes tagged pasta or vegetarian
  recipewriter search "something quick" --category italian --tag pasta --tag vegetarian

  # Search the SQLite catalog instead of the index file
  recipewriter search "tacos" --catalog -m 3`,
	Args: cobra.ExactArgs(1),
	RunE: runSearchCmd,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "m", config.DefaultCount, "maximum number of results")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "only recipes whose category contains this text")
	searchCmd.Flags().StringSliceVar(&searchTags, "tag", nil, "only recipes with any of these tags (repeatable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchCatalog, "catalog", false, "search the SQLite catalog (filters apply to its top results)")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(args[0])
	if query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	limit := searchLimit
	if limit <= 0 {
		limit = config.DefaultCount
	}
	filter := index.Filter{Category: searchCategory, Tags: searchTags}

	log.Debug("Starting search", "query", query, "limit", limit, "catalog", searchCatalog)

	cfg := config.Get()

	ctx, cancel := signalContext()
	defer cancel()

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	var matches []index.Match
	if searchCatalog {
		matches, err = searchCatalogStore(ctx, cfg, emb, query, filter, limit)
	} else {
		matches, err = search.New(newLibraryCache(cfg), emb).Search(ctx, query, filter, limit)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("search failed: %w", err)
	}

	for i := range matches {
		matches[i].Recipe.Embedding = nil
	}

	if searchJSON {
		return outputJSON(matches)
	}

	if len(matches) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	printMatches(matches)
	return nil
}

func printMatches(matches []index.Match) {
	for i, m := range matches {
		r := m.Recipe
		fmt.Println(ui.FormatResult(i+1, r.Title, r.Category, m.Distance))
		if tags := ui.FormatTags(r.Tags); tags != "" {
			fmt.Println("    " + tags)
		}
		if r.Description != "" {
			fmt.Println(ui.RecipeDetail.Render(r.Description))
		}
		if r.URL != "" {
			fmt.Println(ui.RecipeDetail.Render(r.URL))
		}
		if i < len(matches)-1 {
			fmt.Println()
		}
	}
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
