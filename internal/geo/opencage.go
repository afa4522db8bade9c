// Package geo resolves birth places to coordinates and IANA timezones
// using the OpenCage forward-geocoding API.
package geo

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

	"github.com/nmurthy/natalscope/pkg/config"
	"golang.org/x/time/rate"
)

// ErrNoResults is returned when the geocoder finds no match for a query.
var ErrNoResults = errors.New("no geocoding results for query")

// Location is a resolved birth place.
type Location struct {
	// Latitude/Longitude in decimal degrees, east/north positive
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Formatted is the geocoder's display name for the place
	Formatted string `json:"formatted"`

	// Timezone is the IANA zone from the timezone annotation. May be
	// empty when the geocoder has no annotation for the place.
	Timezone string `json:"timezone"`

	// Confidence is the OpenCage match confidence, 1 (worst) to 10 (best)
	Confidence int `json:"confidence"`
}

// Client is an OpenCage geocoding API client.
// API Documentation: https://opencagedata.com/api
// Free tier rate limit: 1 request per second.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	// limiter paces outgoing requests to the configured rate
	limiter *rate.Limiter
}

// NewClient creates a geocoding client from configuration.
func NewClient(cfg config.GeocoderConfig) *Client {
	interval := time.Duration(cfg.RateLimitSeconds * float64(time.Second))
	if interval <= 0 {
		interval = time.Second
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Geocode resolves a free-form place query ("Chennai, India") to a
// location. Returns the best match; ErrNoResults when nothing matched.
func (c *Client) Geocode(ctx context.Context, query string) (*Location, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch geocoding data: %w", err)
	}
	defer resp.Body.Close()

	// 402 is OpenCage's quota-exhausted status, 429 the per-second limit
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusPaymentRequired {
		return nil, &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
			Message:    "geocoding rate limit exceeded",
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geocoding API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp opencageResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse geocoding response: %w", err)
	}

	if len(apiResp.Results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoResults, query)
	}

	best := apiResp.Results[0]
	return &Location{
		Latitude:   best.Geometry.Lat,
		Longitude:  best.Geometry.Lng,
		Formatted:  best.Formatted,
		Timezone:   best.Annotations.Timezone.Name,
		Confidence: best.Confidence,
	}, nil
}

// opencageResponse is the subset of the OpenCage JSON response we use.
type opencageResponse struct {
	Results []opencageResult `json:"results"`
	Status  struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
}

type opencageResult struct {
	Formatted  string `json:"formatted"`
	Confidence int    `json:"confidence"`
	Geometry   struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"geometry"`
	Annotations struct {
		Timezone struct {
			Name string `json:"name"`
		} `json:"timezone"`
	} `json:"annotations"`
}

// RateLimitError represents an HTTP 429/402 rate limit error with retry information.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// IsRateLimitError checks if an error is a rate limit error.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// parseRetryAfter extracts the Retry-After header value.
// Supports both delay-seconds (integer) and HTTP-date formats.
func parseRetryAfter(headers http.Header) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if retryTime, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(retryTime); d > 0 {
			return d
		}
	}

	return 0
}
