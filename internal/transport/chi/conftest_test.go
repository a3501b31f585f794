package chi

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pricewise-in/pricewise/internal/domain"
)

type mockInterpreter struct {
	err error
}

func (m *mockInterpreter) Interpret(_ context.Context, rawText string) (domain.SearchRequest, error) {
	if m.err != nil {
		return domain.SearchRequest{}, m.err
	}
	return domain.NewSearchRequest(rawText, 0, nil)
}

type mockSource struct {
	listings []domain.RawListing
	err      error
}

func (m *mockSource) Fetch(_ context.Context, _ string) ([]domain.RawListing, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.listings, nil
}

type mockIndexer struct{}

func (m *mockIndexer) Reset(_ context.Context)                   {}
func (m *mockIndexer) Index(_ context.Context, _ []domain.Product) {}

type mockRecommender struct{}

func (m *mockRecommender) Recommend(_ context.Context, _ domain.SearchRequest, ranked []domain.Product) domain.Recommendation {
	if len(ranked) == 0 {
		return domain.NewRecommendation("no matching products found", "", domain.SourceFallback)
	}
	best := ranked[0]
	summary := fmt.Sprintf("Best deal: %s at ₹%d from %s.", best.Title(), best.PriceINR(), best.Seller())
	return domain.NewRecommendation(summary, best.ID(), domain.SourceFallback)
}

type mockCompleter struct {
	reply string
	err   error
}

func (m *mockCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type mockSearcher struct{}

func (m *mockSearcher) SimilaritySearch(_ context.Context, _ string, _ int) []string { return nil }

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func testLogger() *zap.Logger { return zap.NewNop() }

var errProviderDown = errors.New("provider down")
