package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/finbridge/quote-service/internal/domain"
	"github.com/finbridge/quote-service/internal/infrastructure/marketdata"
)

const (
	defaultChartBaseURL  = "https://query1.finance.yahoo.com"
	defaultSearchBaseURL = "https://query2.finance.yahoo.com"
	chartPath            = "/v8/finance/chart"
	searchPath           = "/v1/finance/search"
)

// Client implements the QuoteProvider interface against Yahoo Finance.
// The chart and search endpoints live on different hosts, so the client
// keeps two base URLs.
type Client struct {
	chartBaseURL  string
	searchBaseURL string
	httpClient    *http.Client
}

// NewClient creates a new Yahoo Finance client with default settings.
func NewClient() *Client {
	return &Client{
		chartBaseURL:  defaultChartBaseURL,
		searchBaseURL: defaultSearchBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client (for testing).
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		chartBaseURL:  defaultChartBaseURL,
		searchBaseURL: defaultSearchBaseURL,
		httpClient:    httpClient,
	}
}

// SetBaseURLs sets both endpoint base URLs (useful for testing).
func (c *Client) SetBaseURLs(chartBaseURL, searchBaseURL string) {
	c.chartBaseURL = chartBaseURL
	c.searchBaseURL = searchBaseURL
}

// chartResponse represents the Yahoo chart endpoint response.
type chartResponse struct {
	Chart chartData `json:"chart"`
}

type chartData struct {
	Result []chartResult `json:"result"`
	Error  any           `json:"error"`
}

type chartResult struct {
	Meta chartMeta `json:"meta"`
}

type chartMeta struct {
	Currency           string         `json:"currency"`
	Symbol             string         `json:"symbol"`
	RegularMarketPrice domain.Decimal `json:"regularMarketPrice"`
}

// searchResponse represents the Yahoo search endpoint response.
type searchResponse struct {
	Quotes []searchQuote `json:"quotes"`
}

type searchQuote struct {
	Symbol string `json:"symbol"`
}

// FetchChart fetches the one-day chart for a fully-qualified symbol.
// A 404 maps to domain.ErrInstrumentNotFound; a 200 whose result array is
// empty is a MalformedResponseError, since the provider documents the array
// as always present on success.
func (c *Client) FetchChart(ctx context.Context, fullSymbol string) (*marketdata.ChartSnapshot, error) {
	reqURL := fmt.Sprintf("%s%s/%s?interval=1d&range=1d", c.chartBaseURL, chartPath, url.PathEscape(fullSymbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("symbol %s: %w", fullSymbol, domain.ErrInstrumentNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chartResp chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chartResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chartResp.Chart.Result) == 0 {
		return nil, &domain.MalformedResponseError{
			Symbol: fullSymbol,
			Reason: "chart result array is empty",
		}
	}

	meta := chartResp.Chart.Result[0].Meta

	return &marketdata.ChartSnapshot{
		Symbol:   meta.Symbol,
		Price:    meta.RegularMarketPrice,
		Currency: meta.Currency,
	}, nil
}

// SearchByIdentifier searches the provider for an instrument matching the
// given identifier. Zero matches is a successful empty result; any HTTP or
// transport failure, including 404, is a hard error.
func (c *Client) SearchByIdentifier(ctx context.Context, code string) ([]marketdata.SearchMatch, error) {
	params := url.Values{}
	params.Add("q", code)
	params.Add("quotesCount", "1")
	params.Add("newsCount", "0")

	reqURL := fmt.Sprintf("%s%s?%s", c.searchBaseURL, searchPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	matches := make([]marketdata.SearchMatch, 0, len(searchResp.Quotes))
	for _, q := range searchResp.Quotes {
		matches = append(matches, marketdata.SearchMatch{Symbol: q.Symbol})
	}

	return matches, nil
}

// Compile-time check that Client implements QuoteProvider.
var _ marketdata.QuoteProvider = (*Client)(nil)
