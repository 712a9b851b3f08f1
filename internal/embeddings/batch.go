package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// BatchOptions controls how EmbedAll splits its input.
type BatchOptions struct {
	// Size is the number of texts per request. Values below 1 send everything at once.
	Size int

	// Delay is the pause between consecutive requests.
	Delay time.Duration

	// OnBatch is called after each batch with the number of texts embedded so far.
	OnBatch func(done, total int)
}

// EmbedAll embeds texts in batches and returns one vector per text, in order.
func EmbedAll(ctx context.Context, svc Service, texts []string, opts BatchOptions) ([][]float32, error) {
	size := opts.Size
	if size < 1 {
		size = len(texts)
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		if start > 0 && opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}

		end := min(start+size, len(texts))
		log.Debug("Embedding batch", "from", start, "to", end, "total", len(texts))

		batch, err := svc.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch %d-%d: %w", start, end, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding batch %d-%d returned %d vectors", start, end, len(batch))
		}
		vectors = append(vectors, batch...)

		if opts.OnBatch != nil {
			opts.OnBatch(end, len(texts))
		}
	}

	return vectors, nil
}
