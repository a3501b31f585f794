package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/pricewise-in/pricewise/internal/domain"
	"github.com/pricewise-in/pricewise/internal/metrics"
)

const providerName = "serpapi"

// Client fetches Google Shopping results for the India marketplace through
// the SerpApi search endpoint.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	maxResults int
	logger     *zap.Logger
}

// Config holds the search provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
	Retries    int
	Logger     *zap.Logger
}

// New creates a SerpApi client with retry support.
func New(cfg *Config) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.Logger = nil

	return &Client{
		http:       retryClient.StandardClient(),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		logger:     cfg.Logger,
	}
}

// shoppingResponse mirrors the SerpApi google_shopping payload.
type shoppingResponse struct {
	ShoppingResults []shoppingResult `json:"shopping_results"`
	Error           string           `json:"error"`
}

type shoppingResult struct {
	Title          string  `json:"title"`
	Price          string  `json:"price"`
	ExtractedPrice float64 `json:"extracted_price"`
	Source         string  `json:"source"`
	Rating         float64 `json:"rating"`
	Link           string  `json:"link"`
	ProductLink    string  `json:"product_link"`
	Delivery       string  `json:"delivery"`
	Availability   string  `json:"availability"`
}

// Fetch runs a Google Shopping search and returns raw listings in provider order.
func (c *Client) Fetch(ctx context.Context, query string) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("gl", "in")
	params.Set("hl", "en")
	params.Set("num", strconv.Itoa(c.maxResults))
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, fmt.Errorf("search request: %w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	metrics.ProviderRequestDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, fmt.Errorf("search returned status %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}

	var payload shoppingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, fmt.Errorf("decode search response: %w: %w", domain.ErrMalformedResponse, err)
	}
	if payload.Error != "" {
		metrics.ProviderRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, fmt.Errorf("search provider error: %s: %w", payload.Error, domain.ErrProviderUnavailable)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(providerName, "success").Inc()

	listings := make([]domain.RawListing, 0, len(payload.ShoppingResults))
	for _, r := range payload.ShoppingResults {
		link := r.Link
		if link == "" {
			link = r.ProductLink
		}

		var ratingText string
		if r.Rating > 0 {
			ratingText = strconv.FormatFloat(r.Rating, 'f', -1, 64)
		}

		listings = append(listings, domain.RawListing{
			Title:          r.Title,
			PriceText:      r.Price,
			ExtractedPrice: r.ExtractedPrice,
			Seller:         r.Source,
			RatingText:     ratingText,
			Link:           link,
			StockText:      r.Availability,
			Delivery:       r.Delivery,
		})
	}

	c.logger.Debug("Fetched shopping results",
		zap.String("query", query),
		zap.Int("count", len(listings)),
	)

	return listings, nil
}
