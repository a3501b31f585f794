package domain

// RawListing is a single unvalidated result from the shopping search provider.
// Any field may be empty; the normalizer decides what is usable.
type RawListing struct {
	Title          string
	PriceText      string  // provider price string, e.g. "₹45,000" or "Rs. 1,200 - 1,500"
	ExtractedPrice float64 // pre-parsed numeric price when the provider supplies one
	Seller         string
	RatingText     string
	Link           string
	StockText      string // free-text availability, e.g. "In stock"
	Delivery       string
}
