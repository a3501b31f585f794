package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// KeyPrefix namespaces all Redis keys owned by this service.
const KeyPrefix = "pricewise:"

// Availability is the canonical stock state of a listing.
type Availability string

const (
	// InStock means the listing is purchasable now.
	InStock Availability = "in_stock"
	// OutOfStock means the seller reports no stock.
	OutOfStock Availability = "out_of_stock"
	// AvailabilityUnknown means the provider gave no usable stock signal.
	AvailabilityUnknown Availability = "unknown"
)

// SortRank orders availabilities for ranking: InStock < Unknown < OutOfStock.
func (a Availability) SortRank() int {
	switch a {
	case InStock:
		return 0
	case OutOfStock:
		return 2
	default:
		return 1
	}
}

// Product is the canonical, validated form of a shopping listing.
// Immutable once constructed; identity is a stable hash of title, seller and link.
type Product struct {
	id           string
	title        string
	priceINR     int
	seller       string
	rating       float64
	hasRating    bool
	availability Availability
	link         string
}

// ProductID derives the stable identity hash of a listing.
// First 16 hex chars of SHA-256(title|seller|link): short enough for Redis keys,
// long enough that collisions within one result page are not a concern.
func ProductID(title, seller, link string) string {
	h := sha256.Sum256([]byte(title + "|" + seller + "|" + link))
	return hex.EncodeToString(h[:8])
}

// NewProduct creates a validated Product. Title and link must be non-empty,
// price must be non-negative; a missing seller defaults to "Unknown".
func NewProduct(
	title string, priceINR int, seller string,
	rating float64, hasRating bool,
	availability Availability, link string,
) (Product, error) {
	if title == "" {
		return Product{}, errors.New("product title is required")
	}
	if link == "" {
		return Product{}, errors.New("product link is required")
	}
	if priceINR < 0 {
		return Product{}, fmt.Errorf("negative price %d", priceINR)
	}
	if seller == "" {
		seller = "Unknown"
	}
	if hasRating && (rating < 0 || rating > 5) {
		hasRating = false
		rating = 0
	}
	if availability == "" {
		availability = AvailabilityUnknown
	}
	return Product{
		id:           ProductID(title, seller, link),
		title:        title,
		priceINR:     priceINR,
		seller:       seller,
		rating:       rating,
		hasRating:    hasRating,
		availability: availability,
		link:         link,
	}, nil
}

// ReconstructProduct restores a Product from storage without validation.
func ReconstructProduct(
	id, title string, priceINR int, seller string,
	rating float64, hasRating bool,
	availability Availability, link string,
) Product {
	return Product{
		id: id, title: title, priceINR: priceINR, seller: seller,
		rating: rating, hasRating: hasRating,
		availability: availability, link: link,
	}
}

// ID returns the stable identity hash.
func (p *Product) ID() string { return p.id }

// Title returns the listing title.
func (p *Product) Title() string { return p.title }

// PriceINR returns the whole-rupee price.
func (p *Product) PriceINR() int { return p.priceINR }

// Seller returns the seller name ("Unknown" when the provider omitted it).
func (p *Product) Seller() string { return p.seller }

// Rating returns the seller rating in [0,5] and whether one is present.
func (p *Product) Rating() (float64, bool) { return p.rating, p.hasRating }

// Availability returns the canonical stock state.
func (p *Product) Availability() Availability { return p.availability }

// Link returns the listing URL.
func (p *Product) Link() string { return p.link }

// WithPriceINR returns a copy with a different price, keeping the original
// identity. Used when duplicate listings collapse to the lower price.
func (p Product) WithPriceINR(priceINR int) Product {
	p.priceINR = priceINR
	return p
}
