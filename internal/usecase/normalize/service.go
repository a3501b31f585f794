package normalize

import (
	"github.com/pricewise-in/pricewise/internal/domain"
)

// Exclusion reasons attached to listings the normalizer rejects.
const (
	ReasonMissingTitle = "missing title"
	ReasonMissingLink  = "missing link"
	ReasonBadPrice     = "unparseable or non-INR price"
)

// Excluded is a listing the normalizer dropped, kept for diagnostics.
type Excluded struct {
	Listing domain.RawListing
	Reason  string
}

// Normalize converts raw provider listings into validated products.
// Listings without a usable title, link, or INR price land in the excluded
// bucket with a reason. Duplicates (same identity) keep the lower price;
// the first occurrence holds its position in the output order.
func Normalize(listings []domain.RawListing) ([]domain.Product, []Excluded) {
	products := make([]domain.Product, 0, len(listings))
	var excluded []Excluded
	seen := make(map[string]int, len(listings)) // id → index into products

	for i := range listings {
		l := &listings[i]

		if l.Title == "" {
			excluded = append(excluded, Excluded{Listing: *l, Reason: ReasonMissingTitle})
			continue
		}
		if l.Link == "" {
			excluded = append(excluded, Excluded{Listing: *l, Reason: ReasonMissingLink})
			continue
		}

		price, ok := parsePriceINR(l)
		if !ok {
			excluded = append(excluded, Excluded{Listing: *l, Reason: ReasonBadPrice})
			continue
		}

		rating, hasRating := parseRating(l.RatingText)
		availability := parseAvailability(l.StockText)

		p, err := domain.NewProduct(l.Title, price, l.Seller, rating, hasRating, availability, l.Link)
		if err != nil {
			excluded = append(excluded, Excluded{Listing: *l, Reason: err.Error()})
			continue
		}

		if idx, dup := seen[p.ID()]; dup {
			if p.PriceINR() < products[idx].PriceINR() {
				products[idx] = products[idx].WithPriceINR(p.PriceINR())
			}
			continue
		}

		seen[p.ID()] = len(products)
		products = append(products, p)
	}

	return products, excluded
}
