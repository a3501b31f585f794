package recommend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pricewise-in/pricewise/internal/domain"
	"github.com/pricewise-in/pricewise/internal/metrics"
)

// NoMatchesSummary is the fixed recommendation text when nothing survived
// normalization and ranking.
const NoMatchesSummary = "no matching products found"

const systemPrompt = `You are an expert shopping advisor for the Indian market.
You are given a numbered list of product options, each with an id, title, price in INR,
seller, availability, and rating when known. Recommend the best option in 2-3 sentences.
Mention the product by name and its price. Only discuss products from the list, never
invent products, prices, or sellers.`

// Service synthesizes a human-readable recommendation from ranked products.
// The AI path is validated against the candidate set; anything ungrounded is
// replaced by a deterministic template.
type Service struct {
	completer Completer
	topN      int
	logger    *zap.Logger
}

// New creates a recommendation synthesizer. topN caps how many ranked
// products the prompt may reference.
func New(completer Completer, topN int, logger *zap.Logger) *Service {
	return &Service{completer: completer, topN: topN, logger: logger}
}

// Recommend produces a recommendation for the ranked products.
// An empty candidate list yields the fixed no-matches summary.
func (s *Service) Recommend(ctx context.Context, req domain.SearchRequest, ranked []domain.Product) domain.Recommendation {
	if len(ranked) == 0 {
		return domain.NewRecommendation(NoMatchesSummary, "", domain.SourceFallback)
	}

	top := ranked
	if len(top) > s.topN {
		top = top[:s.topN]
	}

	summary, err := s.completer.Complete(ctx, systemPrompt, buildPrompt(req, top))
	if err != nil {
		s.logger.Warn("Recommendation unavailable, using template", zap.Error(err))
		return s.fallback(top)
	}

	summary = strings.TrimSpace(summary)
	if !isGrounded(summary, top) {
		s.logger.Warn("Recommendation not grounded in candidates, using template")
		return s.fallback(top)
	}

	return domain.NewRecommendation(summary, top[0].ID(), domain.SourceAI)
}

// fallback renders the deterministic best-deal template from the top-ranked product.
func (s *Service) fallback(top []domain.Product) domain.Recommendation {
	metrics.FallbacksTotal.WithLabelValues("recommend").Inc()
	best := &top[0]
	summary := fmt.Sprintf("Best deal: %s at ₹%d from %s.", best.Title(), best.PriceINR(), best.Seller())
	return domain.NewRecommendation(summary, best.ID(), domain.SourceFallback)
}

// buildPrompt renders the candidate products for the advisor prompt.
func buildPrompt(req domain.SearchRequest, top []domain.Product) string {
	var b strings.Builder

	fmt.Fprintf(&b, "USER REQUEST: %s\n", req.Query())
	if ceiling, ok := req.BudgetCeiling(); ok {
		fmt.Fprintf(&b, "BUDGET: up to ₹%d\n", ceiling)
	}
	if prefs := req.Preferences(); len(prefs) > 0 {
		fmt.Fprintf(&b, "PREFERENCES: %s\n", strings.Join(prefs, ", "))
	}

	b.WriteString("\nAVAILABLE OPTIONS:\n")
	for i := range top {
		p := &top[i]
		fmt.Fprintf(&b, "\nOption %d:\n- id: %s\n- Product: %s\n- Price: ₹%d\n- Seller: %s\n- Availability: %s\n",
			i+1, p.ID(), p.Title(), p.PriceINR(), p.Seller(), p.Availability())
		if rating, ok := p.Rating(); ok {
			fmt.Fprintf(&b, "- Rating: %.1f\n", rating)
		}
	}

	return b.String()
}

// isGrounded accepts a summary that names a candidate: either by id or by a
// case-insensitive match on the first three words of a candidate title.
func isGrounded(summary string, top []domain.Product) bool {
	if summary == "" {
		return false
	}
	lower := strings.ToLower(summary)

	for i := range top {
		p := &top[i]
		if strings.Contains(lower, strings.ToLower(p.ID())) {
			return true
		}
		if strings.Contains(lower, titleStem(p.Title())) {
			return true
		}
	}
	return false
}

// titleStem is the first three words of a title, lowercased.
func titleStem(title string) string {
	words := strings.Fields(strings.ToLower(title))
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}
