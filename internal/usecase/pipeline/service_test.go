package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pricewise-in/pricewise/internal/domain"
)

// --- mocks ---

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
	listings   []domain.RawListing
	err        error
	blockFirst bool // first Fetch call waits for cancellation

	mu    sync.Mutex
	calls int
}

func (m *mockSource) Fetch(ctx context.Context, _ string) ([]domain.RawListing, error) {
	m.mu.Lock()
	m.calls++
	first := m.calls == 1
	m.mu.Unlock()

	if m.blockFirst && first {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.listings, nil
}

type mockIndexer struct {
	mu      sync.Mutex
	resets  int
	indexed []domain.Product
}

func (m *mockIndexer) Reset(_ context.Context) {
	m.mu.Lock()
	m.resets++
	m.mu.Unlock()
}

func (m *mockIndexer) Index(_ context.Context, products []domain.Product) {
	m.mu.Lock()
	m.indexed = append(m.indexed, products...)
	m.mu.Unlock()
}

type mockRecommender struct {
	mu     sync.Mutex
	calls  int
	ranked []domain.Product
}

func (m *mockRecommender) Recommend(_ context.Context, _ domain.SearchRequest, ranked []domain.Product) domain.Recommendation {
	m.mu.Lock()
	m.calls++
	m.ranked = ranked
	m.mu.Unlock()
	if len(ranked) == 0 {
		return domain.NewRecommendation("no matching products found", "", domain.SourceFallback)
	}
	return domain.NewRecommendation("pick "+ranked[0].Title(), ranked[0].ID(), domain.SourceAI)
}

type mockSession struct {
	mu     sync.Mutex
	begins int
	ranked []domain.Product
}

func (m *mockSession) Begin(_ domain.SearchRequest, ranked []domain.Product, _ domain.Recommendation) {
	m.mu.Lock()
	m.begins++
	m.ranked = ranked
	m.mu.Unlock()
}

func testListings() []domain.RawListing {
	return []domain.RawListing{
		{Title: "Redmi Note 13", ExtractedPrice: 17999, Seller: "Amazon.in", Link: "https://example.com/rn13"},
		{Title: "Samsung Galaxy M34", ExtractedPrice: 16499, Seller: "Flipkart", Link: "https://example.com/m34"},
		{Title: "Broken listing", PriceText: "$20", Link: "https://example.com/x"},
	}
}

func newTestPipeline(src *mockSource) (*Service, *mockIndexer, *mockRecommender, *mockSession) {
	idx := &mockIndexer{}
	rec := &mockRecommender{}
	ses := &mockSession{}
	svc := New(&mockInterpreter{}, src, idx, rec, ses, zap.NewNop())
	return svc, idx, rec, ses
}

// --- tests ---

func TestRun_EndToEnd(t *testing.T) {
	svc, idx, rec, ses := newTestPipeline(&mockSource{listings: testListings()})

	outcome, err := svc.Run(context.Background(), "budget phone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(outcome.Ranked) != 2 {
		t.Fatalf("expected 2 ranked products, got %d", len(outcome.Ranked))
	}
	if outcome.Ranked[0].Title() != "Samsung Galaxy M34" {
		t.Errorf("expected cheapest first, got %s", outcome.Ranked[0].Title())
	}
	if len(outcome.Excluded) != 1 {
		t.Errorf("expected 1 excluded listing, got %d", len(outcome.Excluded))
	}
	if !strings.Contains(outcome.Recommendation.Summary(), "Samsung Galaxy M34") {
		t.Errorf("unexpected recommendation: %q", outcome.Recommendation.Summary())
	}

	if idx.resets != 1 || len(idx.indexed) != 2 {
		t.Errorf("expected reset+index of ranked products, got resets=%d indexed=%d", idx.resets, len(idx.indexed))
	}
	if rec.calls != 1 {
		t.Errorf("expected 1 recommendation call, got %d", rec.calls)
	}
	if ses.begins != 1 || len(ses.ranked) != 2 {
		t.Errorf("expected session started with ranked products, got begins=%d ranked=%d", ses.begins, len(ses.ranked))
	}
}

func TestRun_InvalidQuery(t *testing.T) {
	src := &mockSource{listings: testListings()}
	idx := &mockIndexer{}
	rec := &mockRecommender{}
	ses := &mockSession{}
	svc := New(&mockInterpreter{err: domain.ErrInvalidQuery}, src, idx, rec, ses, zap.NewNop())

	_, err := svc.Run(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if ses.begins != 0 {
		t.Error("session must not start on invalid query")
	}
}

func TestRun_FetchFailureDegrades(t *testing.T) {
	svc, idx, _, ses := newTestPipeline(&mockSource{err: domain.ErrProviderUnavailable})

	outcome, err := svc.Run(context.Background(), "budget phone")
	if err != nil {
		t.Fatalf("fetch failure must not surface, got %v", err)
	}
	if len(outcome.Ranked) != 0 {
		t.Errorf("expected empty results, got %d", len(outcome.Ranked))
	}
	if outcome.Recommendation.Summary() != "no matching products found" {
		t.Errorf("unexpected recommendation: %q", outcome.Recommendation.Summary())
	}
	if ses.begins != 1 {
		t.Error("session must still start so follow-up questions work")
	}
	if idx.resets != 0 {
		t.Error("catalog must not be reset when nothing was fetched")
	}
}

func TestRun_SupersededRun(t *testing.T) {
	src := &mockSource{listings: testListings(), blockFirst: true}
	svc, _, _, ses := newTestPipeline(src)

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background(), "first query")
		errCh <- err
	}()

	// wait until the first run is blocked inside Fetch
	time.Sleep(20 * time.Millisecond)

	outcome, err := svc.Run(context.Background(), "second query")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(outcome.Ranked) != 2 {
		t.Fatalf("expected second run results, got %d", len(outcome.Ranked))
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, domain.ErrSuperseded) {
			t.Fatalf("expected ErrSuperseded for first run, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("first run did not finish")
	}

	if ses.begins != 1 {
		t.Errorf("only the winning run may start the session, got %d", ses.begins)
	}
}

func TestRun_CallerCancellation(t *testing.T) {
	src := &mockSource{listings: testListings(), blockFirst: true}
	svc, _, _, _ := newTestPipeline(src)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Run(ctx, "query")
	if errors.Is(err, domain.ErrSuperseded) {
		t.Fatal("caller cancellation must not be reported as superseded")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
