package interpret

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pricewise-in/pricewise/internal/domain"
	"github.com/pricewise-in/pricewise/internal/metrics"
)

const systemPrompt = `You are a product information extraction expert for Indian e-commerce queries.
Extract structured information from the user's shopping query and return ONLY a valid JSON object
(no markdown, no additional text) with this shape:

{
  "product": "product name",
  "brand": "brand name or null",
  "model": "model/variant or null",
  "budget_max": maximum price in INR as a number, or null,
  "preferences": ["preference 1", "preference 2"]
}

Rules:
1. Use null for missing information.
2. budget_max must be a plain number in rupees, never a string.
3. preferences holds short phrases like "fast delivery" or "high rating"; use [] when none.
4. Return ONLY the JSON object, nothing else.`

// Service turns free-form shopping queries into structured search requests.
// When the language model is unreachable or returns garbage, the raw query
// text passes through as-is so a search can still run.
type Service struct {
	completer Completer
	logger    *zap.Logger
}

// New creates an interpreter service.
func New(completer Completer, logger *zap.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// parsedQuery mirrors the JSON shape the extraction prompt asks for.
type parsedQuery struct {
	Product     string   `json:"product"`
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	BudgetMax   *float64 `json:"budget_max"`
	Preferences []string `json:"preferences"`
}

// Interpret parses raw query text into a SearchRequest.
// Empty or whitespace-only input is rejected with ErrInvalidQuery before any
// provider call is made.
func (s *Service) Interpret(ctx context.Context, rawText string) (domain.SearchRequest, error) {
	trimmed := strings.TrimSpace(rawText)
	if trimmed == "" {
		return domain.SearchRequest{}, domain.ErrInvalidQuery
	}

	userPrompt := fmt.Sprintf("User Query: %q", trimmed)

	raw, err := s.completer.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		s.logger.Warn("Query interpretation unavailable, passing query through", zap.Error(err))
		return s.fallback(trimmed)
	}

	parsed, err := parseExtraction(raw)
	if err != nil {
		s.logger.Warn("Malformed interpretation response, passing query through", zap.Error(err))
		return s.fallback(trimmed)
	}

	query := composeQuery(parsed, trimmed)

	budget := 0
	if parsed.BudgetMax != nil && *parsed.BudgetMax > 0 {
		budget = int(*parsed.BudgetMax)
	}

	req, err := domain.NewSearchRequest(query, budget, parsed.Preferences)
	if err != nil {
		return domain.SearchRequest{}, err
	}
	return req, nil
}

// fallback builds a passthrough request carrying the raw text and no budget ceiling.
func (s *Service) fallback(trimmed string) (domain.SearchRequest, error) {
	metrics.FallbacksTotal.WithLabelValues("interpret").Inc()
	return domain.NewSearchRequest(trimmed, 0, nil)
}

// parseExtraction strips markdown fences and decodes the extraction JSON.
func parseExtraction(raw string) (parsedQuery, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var parsed parsedQuery
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return parsedQuery{}, fmt.Errorf("decode extraction: %w: %w", domain.ErrMalformedResponse, err)
	}
	if strings.TrimSpace(parsed.Product) == "" {
		return parsedQuery{}, fmt.Errorf("extraction missing product: %w", domain.ErrMalformedResponse)
	}
	return parsed, nil
}

// composeQuery joins brand, product, and model into a search string,
// falling back to the raw text if composition yields nothing.
func composeQuery(p parsedQuery, rawText string) string {
	var parts []string
	for _, part := range []string{p.Brand, p.Product, p.Model} {
		if v := strings.TrimSpace(part); v != "" && !strings.EqualFold(v, "null") {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return rawText
	}
	return strings.Join(parts, " ")
}
