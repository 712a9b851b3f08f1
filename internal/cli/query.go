package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nickcecere/recipewriter/internal/article"
	"github.com/nickcecere/recipewriter/internal/config"
	"github.com/nickcecere/recipewriter/internal/index"
	"github.com/nickcecere/recipewriter/internal/query"
	"github.com/nickcecere/recipewriter/internal/search"
	"github.com/nickcecere/recipewriter/internal/ui"
)

var (
	queryHTMLOnly bool
	queryPlain    bool
)

// queryCmd generates an article from the command line
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Generate an HTML recipe article for a request",
	Long: `Retrieve the recipes closest to the request and write an HTML article
about them, exactly as POST /recipe-query does.

A number in the request sets how many recipes to use ("3 vegan soups"),
otherwise the configured default is used.

Examples:
  recipewriter query "3 quick Mexican dinners"

  # Print only the HTML, e.g. to redirect into a file
  recipewriter query "Thai street food" --html-only > thai.html

  # Skip generation and list the retrieved recipes as plain HTML
  recipewriter query "Indian curries" --plain`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryHTMLOnly, "html-only", false, "print only the generated HTML")
	queryCmd.Flags().BoolVar(&queryPlain, "plain", false, "list retrieved recipes as plain HTML without generating text")
}

func runQuery(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(args[0])
	if text == "" {
		return fmt.Errorf("query cannot be empty")
	}

	cfg := config.Get()

	ctx, cancel := signalContext()
	defer cancel()

	cache := newLibraryCache(cfg)

	if queryPlain {
		emb, err := newEmbedder(cfg)
		if err != nil {
			return err
		}
		count := query.ExtractCount(text, cfg.Search.DefaultCount)
		matches, err := search.New(cache, emb).Search(ctx, text, index.Filter{}, count)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		fmt.Print(article.PlainHTML(index.Recipes(matches)))
		return nil
	}

	svc, err := newQueryService(cfg, cache)
	if err != nil {
		return err
	}

	res, err := svc.HandleQuery(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	if queryHTMLOnly {
		fmt.Println(res.HTML)
		return nil
	}

	fmt.Println(ui.Header.Render("Article"))
	fmt.Printf("%s %s | %s %d | %s %d\n",
		ui.Dim.Render("Cuisine:"), res.Cuisine,
		ui.Dim.Render("Requested:"), res.Count,
		ui.Dim.Render("Found:"), len(res.Recipes),
	)
	for i, r := range res.Recipes {
		fmt.Printf("  %d. %s\n", i+1, r.Title)
	}
	fmt.Println(ui.HorizontalRule(60))
	fmt.Println(res.HTML)
	fmt.Println(ui.HorizontalRule(60))
	fmt.Println(ui.Success.Render(res.Summary))
	return nil
}
