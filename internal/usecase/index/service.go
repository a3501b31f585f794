package index

import (
	"context"

	"go.uber.org/zap"

	"github.com/pricewise-in/pricewise/internal/domain"
	"github.com/pricewise-in/pricewise/internal/metrics"
)

// Service maintains the semantic product index. Indexing is best-effort:
// the search pipeline never fails because the vector store or the embedding
// provider is down, it just loses semantic retrieval until they recover.
type Service struct {
	embed   Embedder
	catalog Catalog
	logger  *zap.Logger
}

// New creates a semantic indexer.
func New(embed Embedder, catalog Catalog, logger *zap.Logger) *Service {
	return &Service{embed: embed, catalog: catalog, logger: logger}
}

// Index embeds and upserts each product. A failed product is logged and
// skipped; re-indexing the same product overwrites its record in place.
func (s *Service) Index(ctx context.Context, products []domain.Product) {
	for i := range products {
		p := &products[i]

		result, err := s.embed.Embed(ctx, p.DocumentText())
		if err != nil {
			metrics.FallbacksTotal.WithLabelValues("index").Inc()
			s.logger.Warn("Skipping product, embedding failed",
				zap.String("product_id", p.ID()), zap.Error(err))
			continue
		}

		rec := domain.EmbeddingRecord{
			ProductID: p.ID(),
			Vector:    result.Embedding,
			Title:     p.Title(),
			PriceINR:  p.PriceINR(),
			Seller:    p.Seller(),
		}
		if err := s.catalog.Upsert(ctx, rec); err != nil {
			metrics.FallbacksTotal.WithLabelValues("index").Inc()
			s.logger.Warn("Skipping product, upsert failed",
				zap.String("product_id", p.ID()), zap.Error(err))
		}
	}
}

// SimilaritySearch returns the IDs of the k products closest to the query
// text, nearest first. Any failure degrades to an empty result.
func (s *Service) SimilaritySearch(ctx context.Context, query string, k int) []string {
	if query == "" || k <= 0 {
		return nil
	}

	result, err := s.embed.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("Similarity search unavailable, embedding failed", zap.Error(err))
		return nil
	}

	ids, err := s.catalog.Query(ctx, result.Embedding, k)
	if err != nil {
		s.logger.Warn("Similarity search unavailable, query failed", zap.Error(err))
		return nil
	}
	return ids
}

// Reset clears the indexed catalog before a new search run.
func (s *Service) Reset(ctx context.Context) {
	if err := s.catalog.Reset(ctx); err != nil {
		s.logger.Warn("Catalog reset failed", zap.Error(err))
	}
}
