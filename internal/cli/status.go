package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/recipewriter/internal/config"
	"github.com/nickcecere/recipewriter/internal/recipe"
	"github.com/nickcecere/recipewriter/internal/search"
	"github.com/nickcecere/recipewriter/internal/store"
	"github.com/nickcecere/recipewriter/internal/ui"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show data file and catalog status",
	Long: `Display information about the recipe data:
- Which data files exist and when they were written
- Whether the library loads and how many recipes it holds
- Catalog statistics and the embedding model last synced with`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println(ui.Header.Render("Recipe Data Status"))
	fmt.Println()

	fmt.Println(ui.Bold.Render("Files:"))
	for _, f := range []struct{ label, path string }{
		{"Recipes:", cfg.Data.RecipesPath},
		{"Embeddings:", cfg.Data.EmbeddingsPath},
		{"Index:", cfg.Data.IndexPath},
		{"Catalog:", cfg.Data.CatalogPath},
	} {
		fmt.Printf("  %s %s %s\n", ui.Dim.Render(fmt.Sprintf("%-11s", f.label)), f.path, fileState(f.path))
	}
	fmt.Println()

	fmt.Println(ui.Bold.Render("Library:"))
	lib, err := search.LoadLibrary(cfg.Data.EmbeddingsPath, cfg.Data.IndexPath)
	if err != nil {
		fmt.Printf("  %s %s\n", ui.Error.Render("not loadable:"), err)
		fmt.Println()
		fmt.Println("Run 'recipewriter sync' to build it.")
	} else {
		fmt.Printf("  %s %d\n", ui.Dim.Render("Recipes:"), lib.Size())
		fmt.Printf("  %s %d\n", ui.Dim.Render("Dimension:"), lib.Index.Dim())
		fmt.Printf("  %s %s\n", ui.Dim.Render("Health:"), libraryHealth(lib))
	}
	fmt.Println()

	if _, err := os.Stat(cfg.Data.CatalogPath); err == nil {
		st, err := openCatalog(cfg)
		if err != nil {
			log.Warn("Failed to open catalog", "error", err)
		} else {
			defer st.Close()
			if stats, err := st.Stats(); err != nil {
				log.Warn("Failed to get catalog stats", "error", err)
			} else {
				printCatalogStats(stats)
			}
			if lib != nil {
				if listed, err := st.ListRecipes(); err != nil {
					log.Warn("Failed to list catalog recipes", "error", err)
				} else {
					fmt.Printf("  %s %s\n", ui.Dim.Render("Library match:"), driftState(catalogDrift(listed, lib.Recipes)))
				}
			}
			fmt.Println()
		}
	}

	fmt.Println(ui.Dim.Render("Configuration:"))
	fmt.Printf("  Embedding Provider: %s\n", cfg.Embeddings.Provider)
	fmt.Printf("  LLM Provider: %s\n", cfg.LLM.Provider)

	return nil
}

func printCatalogStats(stats *store.Stats) {
	fmt.Println(ui.Bold.Render("Catalog:"))
	fmt.Printf("  %s %d\n", ui.Dim.Render("Recipes:"), stats.Recipes)
	fmt.Printf("  %s %d\n", ui.Dim.Render("Cached embeddings:"), stats.CachedEmbeddings)
	if stats.Embedding.Model != "" {
		fmt.Printf("  %s %s (%s, %d dims)\n", ui.Dim.Render("Model:"),
			stats.Embedding.Model, stats.Embedding.Provider, stats.Embedding.Dimensions)
	}
	fmt.Printf("  %s %s\n", ui.Dim.Render("Synced:"), formatTime(stats.SyncedAt))
}

// catalogDrift counts positions where the catalog and the library disagree on
// recipe content, plus any records only one side holds.
func catalogDrift(catalog, library []recipe.Recipe) int {
	drift := max(len(catalog), len(library)) - min(len(catalog), len(library))
	for i := range min(len(catalog), len(library)) {
		if recipe.ContentHash(catalog[i]) != recipe.ContentHash(library[i]) {
			drift++
		}
	}
	return drift
}

func driftState(drift int) string {
	if drift == 0 {
		return ui.Success.Render("in sync")
	}
	return ui.Warning.Render(fmt.Sprintf("%d recipes differ (run 'recipewriter sync')", drift))
}

func fileState(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ui.Warning.Render("(missing)")
	}
	return ui.Dim.Render(fmt.Sprintf("(%s, %s)", formatBytes(info.Size()), formatTime(info.ModTime())))
}

// libraryHealth returns a health indicator for a loaded library.
func libraryHealth(lib *search.Library) string {
	if lib.Size() == 0 {
		return ui.Warning.Render("empty (no recipes synced)")
	}
	missingImages := 0
	for _, r := range lib.Recipes {
		if !r.HasImage() {
			missingImages++
		}
	}
	if missingImages == lib.Size() {
		return ui.Warning.Render("no recipe images (articles use placeholders)")
	}
	return ui.Success.Render("healthy")
}

// formatTime formats a time for display.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	t = t.Local()
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return "today at " + t.Format("15:04")
	}
	if t.Year() == now.Year() {
		return t.Format("Jan 2 at 15:04")
	}
	return t.Format("Jan 2, 2006 at 15:04")
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
