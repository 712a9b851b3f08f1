package index

import (
	"fmt"

	"github.com/nickcecere/recipewriter/internal/recipe"
)

// LoadError is shared with the record store so callers handle one type.
type LoadError = recipe.LoadError

// DimensionMismatchError reports an embedding whose length differs from the
// first row of the index, or a missing embedding (Got == 0).
type DimensionMismatchError struct {
	Position int
	Want     int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	if e.Got == 0 {
		return fmt.Sprintf("record %d has no embedding", e.Position)
	}
	return fmt.Sprintf("embedding dimension mismatch at record %d: want %d, got %d", e.Position, e.Want, e.Got)
}
