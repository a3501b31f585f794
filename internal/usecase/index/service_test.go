package index

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/pricewise-in/pricewise/internal/domain"
)

// mockEmbedder returns a fixed vector or fails per-call.
type mockEmbedder struct {
	vector []float32
	errOn  map[string]bool // text → fail
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.errOn[text] {
		return domain.EmbeddingResult{}, domain.ErrProviderUnavailable
	}
	return domain.EmbeddingResult{Embedding: m.vector}, nil
}

// mockCatalog records upserts in memory.
type mockCatalog struct {
	records  map[string]domain.EmbeddingRecord
	queryIDs []string
	upsertFn func(rec domain.EmbeddingRecord) error
	queryErr error
	resetErr error
	resets   int
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{records: make(map[string]domain.EmbeddingRecord)}
}

func (m *mockCatalog) Upsert(_ context.Context, rec domain.EmbeddingRecord) error {
	if m.upsertFn != nil {
		if err := m.upsertFn(rec); err != nil {
			return err
		}
	}
	m.records[rec.ProductID] = rec
	return nil
}

func (m *mockCatalog) Query(_ context.Context, _ []float32, _ int) ([]string, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.queryIDs, nil
}

func (m *mockCatalog) Reset(_ context.Context) error {
	m.resets++
	return m.resetErr
}

func testProduct(t *testing.T, title string) domain.Product {
	t.Helper()
	p, err := domain.NewProduct(title, 999, "TestMart", 0, false, domain.InStock, "https://example.com/"+title)
	if err != nil {
		t.Fatalf("build product: %v", err)
	}
	return p
}

func TestIndex_UpsertsAllProducts(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{0.1, 0.2}}
	cat := newMockCatalog()
	svc := New(emb, cat, zap.NewNop())

	products := []domain.Product{testProduct(t, "a"), testProduct(t, "b")}
	svc.Index(context.Background(), products)

	if len(cat.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(cat.records))
	}
	rec := cat.records[products[0].ID()]
	if rec.Title != "a" || rec.PriceINR != 999 || rec.Seller != "TestMart" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestIndex_Idempotent(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{0.5}}
	cat := newMockCatalog()
	svc := New(emb, cat, zap.NewNop())

	products := []domain.Product{testProduct(t, "a")}
	svc.Index(context.Background(), products)
	svc.Index(context.Background(), products)

	if len(cat.records) != 1 {
		t.Fatalf("re-indexing must overwrite, got %d records", len(cat.records))
	}
}

func TestIndex_EmbedFailureSkipsProduct(t *testing.T) {
	pa, pb := testProduct(t, "a"), testProduct(t, "b")
	emb := &mockEmbedder{
		vector: []float32{0.1},
		errOn:  map[string]bool{pa.DocumentText(): true},
	}
	cat := newMockCatalog()
	svc := New(emb, cat, zap.NewNop())

	svc.Index(context.Background(), []domain.Product{pa, pb})

	if len(cat.records) != 1 {
		t.Fatalf("expected 1 record after skip, got %d", len(cat.records))
	}
	if _, ok := cat.records[pb.ID()]; !ok {
		t.Error("expected surviving product to be indexed")
	}
}

func TestIndex_UpsertFailureContinues(t *testing.T) {
	pa, pb := testProduct(t, "a"), testProduct(t, "b")
	emb := &mockEmbedder{vector: []float32{0.1}}
	cat := newMockCatalog()
	cat.upsertFn = func(rec domain.EmbeddingRecord) error {
		if rec.ProductID == pa.ID() {
			return errors.New("write failed")
		}
		return nil
	}
	svc := New(emb, cat, zap.NewNop())

	svc.Index(context.Background(), []domain.Product{pa, pb})

	if _, ok := cat.records[pb.ID()]; !ok {
		t.Error("expected second product indexed despite first failing")
	}
}

func TestSimilaritySearch_ReturnsIDs(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{0.3}}
	cat := newMockCatalog()
	cat.queryIDs = []string{"id-1", "id-2"}
	svc := New(emb, cat, zap.NewNop())

	ids := svc.SimilaritySearch(context.Background(), "budget phone", 2)
	if len(ids) != 2 || ids[0] != "id-1" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestSimilaritySearch_DegradesToEmpty(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{0.3}}
	cat := newMockCatalog()
	cat.queryErr = errors.New("index gone")
	svc := New(emb, cat, zap.NewNop())

	if ids := svc.SimilaritySearch(context.Background(), "query", 3); ids != nil {
		t.Fatalf("expected nil on failure, got %v", ids)
	}

	emb.errOn = map[string]bool{"query": true}
	cat.queryErr = nil
	if ids := svc.SimilaritySearch(context.Background(), "query", 3); ids != nil {
		t.Fatalf("expected nil on embed failure, got %v", ids)
	}
}

func TestSimilaritySearch_EmptyQuery(t *testing.T) {
	emb := &mockEmbedder{vector: []float32{0.3}}
	svc := New(emb, newMockCatalog(), zap.NewNop())

	if ids := svc.SimilaritySearch(context.Background(), "", 3); ids != nil {
		t.Fatalf("expected nil for empty query, got %v", ids)
	}
	if emb.calls != 0 {
		t.Fatalf("embedder should not be called for empty query")
	}
}

func TestReset_Delegates(t *testing.T) {
	cat := newMockCatalog()
	svc := New(&mockEmbedder{}, cat, zap.NewNop())

	svc.Reset(context.Background())
	if cat.resets != 1 {
		t.Fatalf("expected 1 reset, got %d", cat.resets)
	}

	// failures are absorbed
	cat.resetErr = errors.New("down")
	svc.Reset(context.Background())
	if cat.resets != 2 {
		t.Fatalf("expected 2 resets, got %d", cat.resets)
	}
}
