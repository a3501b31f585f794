package domain

import (
	"context"
	"strconv"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// EmbeddingRecord is the persisted semantic-index entry for one Product.
// Keyed by ProductID; re-indexing the same id overwrites the prior vector.
type EmbeddingRecord struct {
	ProductID string
	Vector    []float32
	Title     string
	PriceINR  int
	Seller    string
}

// DocumentText builds the text a Product is embedded under. Keeping the shape
// stable matters: the embedding cache is keyed by this string.
func (p *Product) DocumentText() string {
	text := "Product: " + p.Title() + " | Seller: " + p.Seller()
	if rating, ok := p.Rating(); ok {
		text += " | Rating: " + formatRating(rating)
	}
	return text
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', 1, 64)
}
