package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// LoadOptions configures Load.
type LoadOptions struct {
	// RequireEmbeddings fails the load when any record lacks an embedding.
	RequireEmbeddings bool
}

// Load reads a JSON array of recipes from path.
func Load(path string, opts LoadOptions) ([]Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		reason := "unreadable file"
		if errors.Is(err, fs.ErrNotExist) {
			reason = "file does not exist"
		}
		return nil, &LoadError{Path: path, Reason: reason, Err: err}
	}

	var recipes []Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, &LoadError{Path: path, Reason: "malformed recipe JSON", Err: err}
	}

	if opts.RequireEmbeddings {
		for i, r := range recipes {
			if !r.HasEmbedding() {
				return nil, &LoadError{
					Path:   path,
					Reason: fmt.Sprintf("record %d (%q) has no embedding", i, r.Title),
				}
			}
		}
	}

	log.Debug("Loaded recipes", "path", path, "count", len(recipes))
	return recipes, nil
}

// Save writes recipes to path as a JSON array, overwriting any existing file.
func Save(path string, recipes []Recipe) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if recipes == nil {
		recipes = []Recipe{}
	}

	data, err := json.MarshalIndent(recipes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recipes: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write recipes: %w", err)
	}

	log.Debug("Saved recipes", "path", path, "count", len(recipes))
	return nil
}
