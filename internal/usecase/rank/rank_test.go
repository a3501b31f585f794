package rank

import (
	"testing"

	"github.com/pricewise-in/pricewise/internal/domain"
)

func product(t *testing.T, title string, price int, rating float64, hasRating bool, avail domain.Availability) domain.Product {
	t.Helper()
	p, err := domain.NewProduct(title, price, "TestMart", rating, hasRating, avail, "https://example.com/"+title)
	if err != nil {
		t.Fatalf("build product: %v", err)
	}
	return p
}

func request(t *testing.T, query string, budget int) domain.SearchRequest {
	t.Helper()
	req, err := domain.NewSearchRequest(query, budget, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	return req
}

func titles(products []domain.Product) []string {
	out := make([]string, len(products))
	for i := range products {
		out[i] = products[i].Title()
	}
	return out
}

func TestRank_PriceAscending(t *testing.T) {
	in := []domain.Product{
		product(t, "mid", 2000, 0, false, domain.InStock),
		product(t, "cheap", 1000, 0, false, domain.InStock),
		product(t, "pricey", 3000, 0, false, domain.InStock),
	}

	ranked, over := Rank(in, request(t, "q", 0))
	if len(over) != 0 {
		t.Fatalf("unexpected over-budget bucket: %v", titles(over))
	}
	got := titles(ranked)
	want := []string{"cheap", "mid", "pricey"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestRank_AvailabilityBreaksPriceTie(t *testing.T) {
	in := []domain.Product{
		product(t, "gone", 1000, 0, false, domain.OutOfStock),
		product(t, "maybe", 1000, 0, false, domain.AvailabilityUnknown),
		product(t, "ready", 1000, 0, false, domain.InStock),
	}

	ranked, _ := Rank(in, request(t, "q", 0))
	got := titles(ranked)
	want := []string{"ready", "maybe", "gone"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestRank_RatingBreaksRemainingTie(t *testing.T) {
	in := []domain.Product{
		product(t, "unrated", 1000, 0, false, domain.InStock),
		product(t, "good", 1000, 4.1, true, domain.InStock),
		product(t, "best", 1000, 4.8, true, domain.InStock),
	}

	ranked, _ := Rank(in, request(t, "q", 0))
	got := titles(ranked)
	want := []string{"best", "good", "unrated"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestRank_FullTieKeepsOriginalOrder(t *testing.T) {
	in := []domain.Product{
		product(t, "first", 1000, 4.0, true, domain.InStock),
		product(t, "second", 1000, 4.0, true, domain.InStock),
		product(t, "third", 1000, 4.0, true, domain.InStock),
	}

	ranked, _ := Rank(in, request(t, "q", 0))
	got := titles(ranked)
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestRank_BudgetCeilingSplitsBucket(t *testing.T) {
	in := []domain.Product{
		product(t, "over-a", 26000, 4.5, true, domain.InStock),
		product(t, "within-a", 19000, 4.0, true, domain.InStock),
		product(t, "over-b", 25500, 0, false, domain.InStock),
		product(t, "within-b", 15000, 0, false, domain.InStock),
	}

	ranked, over := Rank(in, request(t, "q", 25000))

	gotRanked := titles(ranked)
	wantRanked := []string{"within-b", "within-a"}
	for i := range wantRanked {
		if gotRanked[i] != wantRanked[i] {
			t.Fatalf("ranked = %v, want %v", gotRanked, wantRanked)
		}
	}

	gotOver := titles(over)
	wantOver := []string{"over-b", "over-a"}
	for i := range wantOver {
		if gotOver[i] != wantOver[i] {
			t.Fatalf("over = %v, want %v", gotOver, wantOver)
		}
	}
}

func TestRank_ExactCeilingStaysWithin(t *testing.T) {
	in := []domain.Product{
		product(t, "at-ceiling", 25000, 0, false, domain.InStock),
	}

	ranked, over := Rank(in, request(t, "q", 25000))
	if len(ranked) != 1 || len(over) != 0 {
		t.Fatalf("product at the ceiling must stay within budget: ranked=%v over=%v", titles(ranked), titles(over))
	}
}

func TestRank_Deterministic(t *testing.T) {
	in := []domain.Product{
		product(t, "a", 900, 3.9, true, domain.AvailabilityUnknown),
		product(t, "b", 900, 3.9, true, domain.AvailabilityUnknown),
		product(t, "c", 500, 0, false, domain.OutOfStock),
		product(t, "d", 500, 4.9, true, domain.InStock),
	}

	first, _ := Rank(append([]domain.Product(nil), in...), request(t, "q", 0))
	second, _ := Rank(append([]domain.Product(nil), in...), request(t, "q", 0))

	for i := range first {
		if first[i].ID() != second[i].ID() {
			t.Fatalf("ranking not deterministic at %d: %v vs %v", i, titles(first), titles(second))
		}
	}
}
