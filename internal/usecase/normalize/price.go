package normalize

import (
	"strconv"
	"strings"

	"github.com/pricewise-in/pricewise/internal/domain"
)

// foreignMarkers disqualify a price string: a listing priced in another
// currency cannot be compared against INR listings.
var foreignMarkers = []string{"$", "£", "€", "usd", "gbp", "eur", "aed"}

// inrMarkers are stripped before numeric parsing.
var inrMarkers = []string{"₹", "rs.", "rs", "inr"}

// parsePriceINR extracts an integer rupee amount from a raw listing.
// The pre-extracted numeric price wins when present; otherwise the price
// text is parsed. Ranges resolve to their lower bound. Fractional paise
// are truncated. Returns false when no usable INR amount is found.
func parsePriceINR(l *domain.RawListing) (int, bool) {
	if l.ExtractedPrice > 0 {
		return int(l.ExtractedPrice), true
	}
	return parsePriceText(l.PriceText)
}

func parsePriceText(text string) (int, bool) {
	s := strings.TrimSpace(strings.ToLower(text))
	if s == "" {
		return 0, false
	}

	for _, marker := range foreignMarkers {
		if strings.Contains(s, marker) {
			return 0, false
		}
	}

	// "₹40,000 - ₹45,000" resolves to the lower bound
	s = splitRangeLower(s)

	for _, marker := range inrMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	// keep only the leading numeric run
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return 0, false
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return int(f), true
}

func splitRangeLower(s string) string {
	for _, sep := range []string{"–", " - ", " to "} {
		if idx := strings.Index(s, sep); idx > 0 {
			return s[:idx]
		}
	}
	// a bare dash splits a range only when digits sit on both sides
	if idx := strings.Index(s, "-"); idx > 0 {
		left, right := s[:idx], s[idx+1:]
		if hasDigit(left) && hasDigit(right) {
			return left
		}
	}
	return s
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// parseRating extracts the first float token in [0, 5] from rating text.
func parseRating(text string) (float64, bool) {
	for _, token := range strings.Fields(strings.TrimSpace(text)) {
		token = strings.Trim(token, "()")
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			if f >= 0 && f <= 5 {
				return f, true
			}
			return 0, false
		}
	}
	return 0, false
}

// parseAvailability maps free-form stock text onto the availability enum.
// Unrecognized text stays Unknown rather than guessing either way.
func parseAvailability(text string) domain.Availability {
	s := strings.ToLower(strings.TrimSpace(text))
	switch {
	case s == "":
		return domain.AvailabilityUnknown
	case strings.Contains(s, "out of stock"), strings.Contains(s, "unavailable"), strings.Contains(s, "sold out"):
		return domain.OutOfStock
	case strings.Contains(s, "in stock"), strings.Contains(s, "available"):
		return domain.InStock
	default:
		return domain.AvailabilityUnknown
	}
}
