package openfoodfacts

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/foodguard/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public OpenFoodFacts instance
	DefaultBaseURL = "https://world.openfoodfacts.org"

	// DefaultTimeout bounds a single product lookup
	DefaultTimeout = 5 * time.Second

	// DefaultRequestsPerMinute matches the OpenFoodFacts read limit for product queries
	DefaultRequestsPerMinute = 100

	defaultUserAgent = "FoodGuard/1.0"
	maxBodyBytes     = 4 << 20
)

// ClientConfig holds OpenFoodFacts client settings. Zero values fall back to defaults.
type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	UserAgent         string
	RequestsPerMinute int
}

// Client resolves barcodes against the OpenFoodFacts product API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	timeout     time.Duration
	debug       bool
}

// NewClient creates a new OpenFoodFacts API client
func NewClient(config ClientConfig) *Client {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	perMinute := config.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = DefaultRequestsPerMinute
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     baseURL,
		userAgent:   userAgent,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 10), // burst of 10 requests
		timeout:     timeout,
	}
}

// SetDebug enables or disables debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// productURL builds the v0 product endpoint for a barcode
func (c *Client) productURL(barcode string) string {
	return fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))
}

// doRequest executes an HTTP GET request with proper headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// Resolve fetches the product for a barcode.
// A missing product yields domain.ErrProductNotFound; transport failures,
// timeouts and unexpected statuses yield a *domain.ResolverError. Nothing is retried.
func (c *Client) Resolve(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, domain.ErrInvalidInput
	}

	// the timeout covers the limiter wait as well as the request
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, &domain.ResolverError{Barcode: barcode, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	reqURL := c.productURL(barcode)
	if c.debug {
		log.Printf("[OFF] GET %s", reqURL)
	}

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		log.Printf("[OFF] Request error for %s: %v", barcode, err)
		return nil, &domain.ResolverError{Barcode: barcode, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.ResolverError{Barcode: barcode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// some OFF deployments answer 404 with the usual "product not found" body
		return nil, domain.ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		log.Printf("[OFF] API error for %s - Status: %d", barcode, resp.StatusCode)
		return nil, &domain.ResolverError{Barcode: barcode, StatusCode: resp.StatusCode}
	}

	record, err := MapToProductRecord(barcode, body)
	if err != nil {
		return nil, err
	}

	if c.debug {
		log.Printf("[OFF] Resolved %s: %q (%s)", barcode, record.Title, record.Brand)
	}
	return record, nil
}
