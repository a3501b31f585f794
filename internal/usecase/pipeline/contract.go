package pipeline

import (
	"context"

	"github.com/pricewise-in/pricewise/internal/domain"
)

// Interpreter turns raw query text into a structured search request.
type Interpreter interface {
	Interpret(ctx context.Context, rawText string) (domain.SearchRequest, error)
}

// ListingSource fetches raw shopping listings for a query.
type ListingSource interface {
	Fetch(ctx context.Context, query string) ([]domain.RawListing, error)
}

// Indexer maintains the semantic product catalog.
type Indexer interface {
	Reset(ctx context.Context)
	Index(ctx context.Context, products []domain.Product)
}

// Recommender synthesizes a summary from ranked products.
type Recommender interface {
	Recommend(ctx context.Context, req domain.SearchRequest, ranked []domain.Product) domain.Recommendation
}

// SessionStarter activates the assistant with a completed search run.
type SessionStarter interface {
	Begin(request domain.SearchRequest, ranked []domain.Product, rec domain.Recommendation)
}
