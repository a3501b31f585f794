package index

import (
	"context"

	"github.com/pricewise-in/pricewise/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Catalog stores and queries product embedding records.
type Catalog interface {
	Upsert(ctx context.Context, rec domain.EmbeddingRecord) error
	Query(ctx context.Context, vector []float32, k int) ([]string, error)
	Reset(ctx context.Context) error
}
