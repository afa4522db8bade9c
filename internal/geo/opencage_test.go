package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nmurthy/natalscope/pkg/config"
)

const chennaiResponse = `{
	"results": [
		{
			"formatted": "Chennai, Tamil Nadu, India",
			"confidence": 7,
			"geometry": {"lat": 13.0836939, "lng": 80.270186},
			"annotations": {"timezone": {"name": "Asia/Kolkata"}}
		}
	],
	"status": {"code": 200, "message": "OK"}
}`

func testClient(serverURL string) *Client {
	return NewClient(config.GeocoderConfig{
		BaseURL:          serverURL,
		APIKey:           "test-key",
		RateLimitSeconds: 0.001, // keep tests fast
		TimeoutSeconds:   5,
	})
}

// TestGeocode tests a successful forward geocoding call.
func TestGeocode(t *testing.T) {
	var gotQuery, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chennaiResponse))
	}))
	defer server.Close()

	loc, err := testClient(server.URL).Geocode(context.Background(), "Chennai, India")
	if err != nil {
		t.Fatalf("Geocode failed: %v", err)
	}

	if gotQuery != "Chennai, India" {
		t.Errorf("query param = %q, want %q", gotQuery, "Chennai, India")
	}
	if gotKey != "test-key" {
		t.Errorf("key param = %q, want test-key", gotKey)
	}
	if loc.Latitude != 13.0836939 || loc.Longitude != 80.270186 {
		t.Errorf("coordinates = %f, %f", loc.Latitude, loc.Longitude)
	}
	if loc.Timezone != "Asia/Kolkata" {
		t.Errorf("timezone = %q, want Asia/Kolkata", loc.Timezone)
	}
	if loc.Formatted != "Chennai, Tamil Nadu, India" {
		t.Errorf("formatted = %q", loc.Formatted)
	}
	if loc.Confidence != 7 {
		t.Errorf("confidence = %d, want 7", loc.Confidence)
	}
}

// TestGeocodeNoResults tests the empty-results path.
func TestGeocodeNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [], "status": {"code": 200, "message": "OK"}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Geocode(context.Background(), "Nowhere At All")
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("want ErrNoResults, got %v", err)
	}
}

// TestGeocodeRateLimited tests 429 handling with Retry-After.
func TestGeocodeRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Geocode(context.Background(), "Chennai")
	rle, ok := IsRateLimitError(err)
	if !ok {
		t.Fatalf("want RateLimitError, got %v", err)
	}
	if rle.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", rle.RetryAfter)
	}
}

// TestGeocodeQuotaExhausted tests OpenCage's 402 quota status.
func TestGeocodeQuotaExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Geocode(context.Background(), "Chennai")
	if _, ok := IsRateLimitError(err); !ok {
		t.Errorf("want RateLimitError for 402, got %v", err)
	}
}

// TestGeocodeServerError tests non-rate-limit error statuses.
func TestGeocodeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Geocode(context.Background(), "Chennai")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if _, ok := IsRateLimitError(err); ok {
		t.Error("500 should not classify as a rate limit error")
	}
}

// TestParseRetryAfter tests both header formats.
func TestParseRetryAfter(t *testing.T) {
	h := http.Header{}
	if d := parseRetryAfter(h); d != 0 {
		t.Errorf("missing header should yield 0, got %v", d)
	}

	h.Set("Retry-After", "45")
	if d := parseRetryAfter(h); d != 45*time.Second {
		t.Errorf("seconds format = %v, want 45s", d)
	}

	h.Set("Retry-After", time.Now().Add(2*time.Minute).UTC().Format(http.TimeFormat))
	d := parseRetryAfter(h)
	if d <= time.Minute || d > 2*time.Minute {
		t.Errorf("HTTP-date format = %v, want ~2m", d)
	}

	h.Set("Retry-After", "garbage")
	if d := parseRetryAfter(h); d != 0 {
		t.Errorf("garbage header should yield 0, got %v", d)
	}
}

// TestRetryWithBackoff tests the generic retry helper against a flaky server.
func TestRetryWithBackoff(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(chennaiResponse))
		}))
		defer server.Close()

		client := testClient(server.URL)
		cfg := RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond, Multiplier: 2.0}

		loc, err := RetryWithBackoff(context.Background(), cfg, func() (*Location, error) {
			return client.Geocode(context.Background(), "Chennai")
		})
		if err != nil {
			t.Fatalf("RetryWithBackoff failed: %v", err)
		}
		if loc.Timezone != "Asia/Kolkata" {
			t.Errorf("timezone = %q", loc.Timezone)
		}
		if attempts != 3 {
			t.Errorf("attempts = %d, want 3", attempts)
		}
	})

	t.Run("exhausts retries", func(t *testing.T) {
		cfg := RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2.0}

		calls := 0
		_, err := RetryWithBackoff(context.Background(), cfg, func() (int, error) {
			calls++
			return 0, errors.New("always failing")
		})
		if err == nil {
			t.Fatal("expected error after exhausting retries")
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
		}
	})

	t.Run("retry-after overrides backoff delay", func(t *testing.T) {
		// Backoff alone would wait an hour; the rate limit error's
		// Retry-After must win or this times out.
		cfg := RetryConfig{
			MaxRetries:        2,
			InitialDelay:      time.Hour,
			MaxDelay:          time.Hour,
			Multiplier:        2.0,
			RespectRetryAfter: true,
		}

		calls := 0
		done := make(chan error, 1)
		go func() {
			_, err := RetryWithBackoff(context.Background(), cfg, func() (int, error) {
				calls++
				if calls == 1 {
					return 0, &RateLimitError{
						StatusCode: http.StatusTooManyRequests,
						RetryAfter: 5 * time.Millisecond,
						Message:    "slow down",
					}
				}
				return 42, nil
			})
			done <- err
		}()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("RetryWithBackoff failed: %v", err)
			}
			if calls != 2 {
				t.Errorf("calls = %d, want 2", calls)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Retry-After was not honored, retry stuck in backoff delay")
		}
	})

	t.Run("context cancellation stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cfg := RetryConfig{MaxRetries: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 2.0}

		done := make(chan error, 1)
		go func() {
			_, err := RetryWithBackoff(ctx, cfg, func() (int, error) {
				return 0, errors.New("failing")
			})
			done <- err
		}()

		cancel()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("want context.Canceled in chain, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("retry did not observe cancellation")
		}
	})
}
