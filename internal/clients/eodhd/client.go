// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/quotevault/internal/common"
	"github.com/bobmcallan/quotevault/internal/interfaces"
	"github.com/bobmcallan/quotevault/internal/models"
)

const (
	// ProviderName is recorded as data_source on cache documents
	ProviderName = "eodhd"

	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "NA" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return ProviderName
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string      `json:"date"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
	Volume        int64       `json:"volume"`
}

// FetchHistoricalBars retrieves daily bars for [from, to] inclusive,
// oldest first.
func (c *Client) FetchHistoricalBars(ctx context.Context, symbol, exchange string, from, to time.Time) ([]models.RawBar, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	if !from.IsZero() {
		params.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		params.Set("to", to.Format("2006-01-02"))
	}

	path := fmt.Sprintf("/eod/%s.%s", symbol, exchange)

	var bars []eodBarResponse
	if err := c.get(ctx, path, params, &bars); err != nil {
		// An unknown symbol yields 404; treat it as an empty history
		// rather than a transport failure.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	result := make([]models.RawBar, len(bars))
	for i, bar := range bars {
		result[i] = models.RawBar{
			Date:          bar.Date,
			Open:          float64(bar.Open),
			High:          float64(bar.High),
			Low:           float64(bar.Low),
			Close:         float64(bar.Close),
			AdjustedClose: float64(bar.AdjustedClose),
			Volume:        bar.Volume,
		}
	}

	return result, nil
}

// realTimeResponse represents the real-time quote API response.
// Fields arrive as "NA" strings when the market has no data.
type realTimeResponse struct {
	Code      string      `json:"code"`
	Close     flexFloat64 `json:"close"`
	Change    flexFloat64 `json:"change"`
	ChangePct flexFloat64 `json:"change_p"`
	Timestamp int64       `json:"timestamp"`
}

// FetchRealTimeQuote retrieves the current live quote
func (c *Client) FetchRealTimeQuote(ctx context.Context, symbol, exchange string) (*models.RealTimeQuote, error) {
	path := fmt.Sprintf("/real-time/%s.%s", symbol, exchange)

	var resp realTimeResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	ts := time.Unix(resp.Timestamp, 0).UTC()
	if resp.Timestamp == 0 {
		ts = time.Time{}
	}

	return &models.RealTimeQuote{
		Code:      resp.Code,
		Price:     float64(resp.Close),
		Change:    float64(resp.Change),
		ChangePct: float64(resp.ChangePct),
		Timestamp: ts,
	}, nil
}

// SearchSecurities looks up securities matching a free-text query
func (c *Client) SearchSecurities(ctx context.Context, query string, limit int) ([]*models.SecurityMeta, error) {
	if limit <= 0 {
		limit = 15
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	path := "/search/" + url.PathEscape(query)

	var results []models.SecurityMeta
	if err := c.get(ctx, path, params, &results); err != nil {
		return nil, err
	}

	mapped := make([]*models.SecurityMeta, len(results))
	for i := range results {
		mapped[i] = &results[i]
	}

	return mapped, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
