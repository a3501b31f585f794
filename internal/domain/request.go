package domain

import "strings"

// Region is the fixed market for all searches. Prices are INR.
const Region = "IN"

// SearchRequest is the structured form of a user query. Immutable.
type SearchRequest struct {
	query         string
	budgetCeiling int
	hasBudget     bool
	preferences   []string
}

// NewSearchRequest creates a validated SearchRequest. The query must be
// non-empty after trimming. budgetCeiling <= 0 means no ceiling.
func NewSearchRequest(query string, budgetCeiling int, preferences []string) (SearchRequest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchRequest{}, ErrInvalidQuery
	}
	prefs := make([]string, 0, len(preferences))
	for _, p := range preferences {
		if p = strings.TrimSpace(p); p != "" {
			prefs = append(prefs, p)
		}
	}
	return SearchRequest{
		query:         query,
		budgetCeiling: budgetCeiling,
		hasBudget:     budgetCeiling > 0,
		preferences:   prefs,
	}, nil
}

// Query returns the search string sent to the shopping provider.
func (r *SearchRequest) Query() string { return r.query }

// BudgetCeiling returns the maximum acceptable price and whether one is set.
func (r *SearchRequest) BudgetCeiling() (int, bool) { return r.budgetCeiling, r.hasBudget }

// Region returns the fixed market region.
func (r *SearchRequest) Region() string { return Region }

// Preferences returns the ordered qualitative preferences.
func (r *SearchRequest) Preferences() []string { return r.preferences }
