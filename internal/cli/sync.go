package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/recipewriter/internal/airtable"
	"github.com/nickcecere/recipewriter/internal/config"
	"github.com/nickcecere/recipewriter/internal/pipeline"
	"github.com/nickcecere/recipewriter/internal/recipe"
	"github.com/nickcecere/recipewriter/internal/store"
	"github.com/nickcecere/recipewriter/internal/ui"
)

var syncNoCatalog bool

// syncCmd runs the whole rebuild
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch, embed and index recipes from Airtable",
	Long: `Fetch every recipe from Airtable, embed the ones whose content changed,
store them in the catalog and rebuild the search index.

Recipes whose text is unchanged since the last sync reuse their cached
embedding from the catalog.

Examples:
  # Full rebuild
  recipewriter sync

  # Rebuild without touching the SQLite catalog
  recipewriter sync --no-catalog`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

// fetchCmd only pulls recipes
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch recipes from Airtable into the recipes file",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

// embedCmd embeds the recipes file
var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed the recipes file into the embeddings file",
	Args:  cobra.NoArgs,
	RunE:  runEmbed,
}

// buildIndexCmd rebuilds the index file from the embeddings file
var buildIndexCmd = &cobra.Command{
	Use:   "build-index",
	Short: "Build the search index from the embeddings file",
	Args:  cobra.NoArgs,
	RunE:  runBuildIndex,
}

func init() {
	syncCmd.Flags().BoolVar(&syncNoCatalog, "no-catalog", false, "skip the SQLite catalog and embedding cache")
	embedCmd.Flags().BoolVar(&syncNoCatalog, "no-catalog", false, "do not reuse or cache embeddings in the catalog")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	ctx, cancel := signalContext()
	defer cancel()

	client, err := airtable.NewClient(cfg.Airtable)
	if err != nil {
		return err
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	catalog, closeCatalog, err := optionalCatalog(cfg)
	if err != nil {
		return err
	}
	defer closeCatalog()

	fmt.Println(ui.Header.Render("Syncing recipes"))
	fmt.Printf("Provider: %s (%s)\n", emb.Provider(), emb.ModelName())
	fmt.Println()

	p := newPipeline(cfg, emb, catalog, progressPrinter())
	res, err := p.Sync(ctx, client)

	// Clear progress line
	fmt.Printf("\r\033[K")

	if err != nil {
		if ctx.Err() != nil {
			fmt.Println(ui.Warning.Render("Sync cancelled"))
			return nil
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Println(ui.Success.Render("Sync complete!"))
	fmt.Println()
	fmt.Printf("  Recipes:   %d\n", res.Recipes)
	fmt.Printf("  Embedded:  %d\n", res.Embedded)
	fmt.Printf("  Reused:    %d\n", res.Reused)
	fmt.Printf("  Dimension: %d\n", res.Dim)
	fmt.Printf("  Duration:  %s\n", res.Duration.Round(time.Millisecond))
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	ctx, cancel := signalContext()
	defer cancel()

	client, err := airtable.NewClient(cfg.Airtable)
	if err != nil {
		return err
	}

	p := newPipeline(cfg, nil, nil, nil)
	recipes, err := p.Fetch(ctx, client)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	fmt.Printf("%s %d recipes written to %s\n", ui.Success.Render("Fetched"), len(recipes), cfg.Data.RecipesPath)
	return nil
}

func runEmbed(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	ctx, cancel := signalContext()
	defer cancel()

	recipes, err := recipe.Load(cfg.Data.RecipesPath, recipe.LoadOptions{})
	if err != nil {
		return err
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	catalog, closeCatalog, err := optionalCatalog(cfg)
	if err != nil {
		return err
	}
	defer closeCatalog()

	p := newPipeline(cfg, emb, catalog, progressPrinter())
	out, err := p.Embed(ctx, recipes)
	fmt.Printf("\r\033[K")
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println(ui.Warning.Render("Embedding cancelled"))
			return nil
		}
		return fmt.Errorf("embedding failed: %w", err)
	}

	progress := p.Progress()
	fmt.Printf("%s %d recipes (%d reused) written to %s\n",
		ui.Success.Render("Embedded"), len(out), progress.Reused, cfg.Data.EmbeddingsPath)
	return nil
}

func runBuildIndex(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	recipes, err := recipe.Load(cfg.Data.EmbeddingsPath, recipe.LoadOptions{RequireEmbeddings: true})
	if err != nil {
		return err
	}

	p := newPipeline(cfg, nil, nil, nil)
	idx, err := p.BuildIndex(recipes)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	fmt.Printf("%s %d vectors (dim %d) written to %s\n", ui.Success.Render("Indexed"), idx.Len(), idx.Dim(), cfg.Data.IndexPath)
	return nil
}

// optionalCatalog opens the catalog unless --no-catalog was given. A catalog
// that cannot be opened is skipped with a warning.
func optionalCatalog(cfg *config.Config) (store.Store, func(), error) {
	noop := func() {}
	if syncNoCatalog {
		return nil, noop, nil
	}

	st, err := openCatalog(cfg)
	if err != nil {
		log.Warn("Continuing without catalog", "error", err)
		return nil, noop, nil
	}
	return st, func() { st.Close() }, nil
}

// progressPrinter renders pipeline progress on a single terminal line.
func progressPrinter() pipeline.ProgressFunc {
	lastUpdate := time.Time{}
	return func(p pipeline.Progress) {
		// Throttle updates to every 100ms
		if time.Since(lastUpdate) < 100*time.Millisecond && p.Stage == pipeline.StageEmbed {
			return
		}
		lastUpdate = time.Now()

		fmt.Printf("\r\033[K")
		switch p.Stage {
		case pipeline.StageFetch:
			fmt.Printf("Fetching recipes... %d", p.Recipes)
		case pipeline.StageEmbed:
			todo := p.Recipes - p.Reused
			fmt.Printf("Embedding: %d/%d new | %d reused", p.Embedded, todo, p.Reused)
		case pipeline.StageCatalog:
			fmt.Print("Updating catalog...")
		case pipeline.StageIndex:
			fmt.Print("Building index...")
		}
	}
}
