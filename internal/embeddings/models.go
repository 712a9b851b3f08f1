package embeddings

import "fmt"

// model describes what is known about an embedding model ahead of the first
// request. Some models were trained with asymmetric inputs and expect a task
// prefix on documents, queries or both.
type model struct {
	dims        int
	docPrefix   string
	queryPrefix string
}

var knownModels = map[string]model{
	"nomic-embed-text": {
		dims:        768,
		docPrefix:   "search_document: ",
		queryPrefix: "search_query: ",
	},
	"mxbai-embed-large": {
		dims:        1024,
		queryPrefix: "Represent this sentence for searching relevant passages: ",
	},
	"all-minilm":             {dims: 384},
	"snowflake-arctic-embed": {dims: 1024},

	"text-embedding-3-small": {dims: 1536},
	"text-embedding-3-large": {dims: 3072},
	"text-embedding-ada-002": {dims: 1536},
}

// GetModelDimensions returns the known dimensions for a model, or 0 if unknown.
func GetModelDimensions(name string) int {
	return knownModels[name].dims
}

// withPrefix prepends the model's task prefix, if it has one.
func withPrefix(name, text string, query bool) string {
	m := knownModels[name]
	if query {
		return m.queryPrefix + text
	}
	return m.docPrefix + text
}

// uniformDims checks that every vector is non-empty and has the same length,
// and returns that length.
func uniformDims(vectors [][]float32) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 {
			return 0, fmt.Errorf("no embedding returned for input %d", i)
		}
		if len(v) != dims {
			return 0, fmt.Errorf("embedding %d has %d dimensions, expected %d", i, len(v), dims)
		}
	}
	return dims, nil
}
