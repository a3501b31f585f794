package domain

// RecommendationSource identifies how a recommendation was produced.
type RecommendationSource string

const (
	// SourceAI marks an AI-generated recommendation.
	SourceAI RecommendationSource = "ai"
	// SourceFallback marks a deterministic template recommendation.
	SourceFallback RecommendationSource = "fallback"
)

// Recommendation is the final human-readable summary for a query session.
// Created once, never mutated.
type Recommendation struct {
	summary   string
	productID string
	source    RecommendationSource
}

// NewRecommendation creates a Recommendation. productID may be empty when no
// products matched.
func NewRecommendation(summary, productID string, source RecommendationSource) Recommendation {
	return Recommendation{summary: summary, productID: productID, source: source}
}

// Summary returns the human-readable recommendation text.
func (r *Recommendation) Summary() string { return r.summary }

// SourceProductID returns the id of the Product the summary is grounded in,
// empty for the no-matches case.
func (r *Recommendation) SourceProductID() string { return r.productID }

// GeneratedBy reports whether the summary came from the AI or the fallback path.
func (r *Recommendation) GeneratedBy() RecommendationSource { return r.source }
