package assist

import "context"

// Completer produces a chat completion for a system+user prompt pair.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Searcher retrieves semantically similar product IDs for a free-text query.
type Searcher interface {
	SimilaritySearch(ctx context.Context, query string, k int) []string
}
