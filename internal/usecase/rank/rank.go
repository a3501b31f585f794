package rank

import (
	"sort"

	"github.com/pricewise-in/pricewise/internal/domain"
)

// Rank orders products for presentation: price ascending, then availability
// (in stock first, unknown next, out of stock last), then rating descending
// with unrated products after rated ones. Ties keep their original order.
//
// When the request carries a budget ceiling, products priced above it are
// split into the over-budget bucket, ranked by the same rules.
func Rank(products []domain.Product, req domain.SearchRequest) (ranked, overBudget []domain.Product) {
	ceiling, hasBudget := req.BudgetCeiling()

	within := make([]domain.Product, 0, len(products))
	var over []domain.Product

	for _, p := range products {
		if hasBudget && p.PriceINR() > ceiling {
			over = append(over, p)
			continue
		}
		within = append(within, p)
	}

	sortProducts(within)
	sortProducts(over)
	return within, over
}

func sortProducts(products []domain.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := &products[i], &products[j]

		if a.PriceINR() != b.PriceINR() {
			return a.PriceINR() < b.PriceINR()
		}

		if ar, br := a.Availability().SortRank(), b.Availability().SortRank(); ar != br {
			return ar < br
		}

		aRating, aHas := a.Rating()
		bRating, bHas := b.Rating()
		if aHas != bHas {
			return aHas // rated before unrated
		}
		if aHas && aRating != bRating {
			return aRating > bRating
		}

		return false // stable sort preserves original order
	})
}
