package chi

import (
	"github.com/pricewise-in/pricewise/internal/domain"
	pipelineuc "github.com/pricewise-in/pricewise/internal/usecase/pipeline"
)

type errorCode string

const (
	codeBadRequest      errorCode = "bad_request"
	codeUnauthorized    errorCode = "unauthorized"
	codeInvalidQuery    errorCode = "invalid_query"
	codeNoActiveSession errorCode = "no_active_session"
	codeSuperseded      errorCode = "superseded"
	codeInternalError   errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type productResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	PriceINR     int      `json:"price_inr"`
	Seller       string   `json:"seller"`
	Rating       *float64 `json:"rating,omitempty"`
	Availability string   `json:"availability"`
	Link         string   `json:"link"`
}

type excludedResponse struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

type recommendationResponse struct {
	Summary         string `json:"summary"`
	SourceProductID string `json:"source_product_id,omitempty"`
	GeneratedBy     string `json:"generated_by"`
}

type searchResponse struct {
	SessionID      string                 `json:"session_id"`
	Query          string                 `json:"query"`
	BudgetCeiling  int                    `json:"budget_ceiling,omitempty"`
	Products       []productResponse      `json:"products"`
	OverBudget     []productResponse      `json:"over_budget,omitempty"`
	Excluded       []excludedResponse     `json:"excluded,omitempty"`
	Recommendation recommendationResponse `json:"recommendation"`
}

func productToResponse(p *domain.Product) productResponse {
	resp := productResponse{
		ID:           p.ID(),
		Title:        p.Title(),
		PriceINR:     p.PriceINR(),
		Seller:       p.Seller(),
		Availability: string(p.Availability()),
		Link:         p.Link(),
	}
	if rating, ok := p.Rating(); ok {
		resp.Rating = &rating
	}
	return resp
}

func productsToResponse(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, productToResponse(&products[i]))
	}
	return out
}

func outcomeToResponse(o *pipelineuc.Outcome, sessionID string) searchResponse {
	ceiling, _ := o.Request.BudgetCeiling()

	excluded := make([]excludedResponse, 0, len(o.Excluded))
	for _, e := range o.Excluded {
		excluded = append(excluded, excludedResponse{
			Title:  e.Listing.Title,
			Reason: e.Reason,
		})
	}

	return searchResponse{
		SessionID:     sessionID,
		Query:         o.Request.Query(),
		BudgetCeiling: ceiling,
		Products:      productsToResponse(o.Ranked),
		OverBudget:    productsToResponse(o.OverBudget),
		Excluded:      excluded,
		Recommendation: recommendationResponse{
			Summary:         o.Recommendation.Summary(),
			SourceProductID: o.Recommendation.SourceProductID(),
			GeneratedBy:     string(o.Recommendation.GeneratedBy()),
		},
	}
}
