package sitemap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// testRetryPolicy keeps backoff waits negligible so retry tests run fast.
func testRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:        maxRetries,
		InitialBackoff:    time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        10 * time.Millisecond,
	}
}

func newTestClient() *Client {
	return NewClient(NewFetcher(DefaultConfig()))
}

func TestRetryPolicyBackoff(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries:        5,
		InitialBackoff:    100 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}

	tests := []struct {
		retry int
		want  time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{10, 51200 * time.Millisecond},
		{20, 30 * time.Second}, // capped
	}

	for _, tt := range tests {
		if got := policy.backoff(tt.retry); got != tt.want {
			t.Errorf("backoff(%d) = %v, want %v", tt.retry, got, tt.want)
		}
	}
}

func TestRetryableStatus(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusGatewayTimeout, true},
		{http.StatusOK, false},
		{http.StatusNotFound, false},
		{http.StatusForbidden, false},
		{http.StatusMovedPermanently, false},
		{http.StatusNotImplemented, false},
	}

	for _, tt := range tests {
		if got := retryableStatus(tt.status); got != tt.want {
			t.Errorf("retryableStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestRetryAfterDelay(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
		wantOK bool
	}{
		{"", 0, false},
		{"5", 5 * time.Second, true},
		{"0", 0, true},
		{" 7 ", 7 * time.Second, true},
		{"-1", 0, false},
		{"soon", 0, false},
		{"1.5", 0, false},
	}

	for _, tt := range tests {
		got, ok := retryAfterDelay(tt.header)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("retryAfterDelay(%q) = (%v, %v), want (%v, %v)", tt.header, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFetchSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<urlset></urlset>"))
	}))
	defer ts.Close()

	client := newTestClient()
	result := client.Fetch(context.Background(), ts.URL, testRetryPolicy(5))

	if !result.Success {
		t.Fatalf("Expected success, got error %v (status %d)", result.Err, result.StatusCode)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", result.StatusCode, http.StatusOK)
	}
	if result.ContentType != "application/xml" {
		t.Errorf("ContentType = %q, want %q", result.ContentType, "application/xml")
	}
	if string(result.Body) != "<urlset></urlset>" {
		t.Errorf("Body = %q, want %q", result.Body, "<urlset></urlset>")
	}
}

func TestFetchRetriesUntilSuccess(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("recovered"))
	}))
	defer ts.Close()

	client := newTestClient()
	result := client.Fetch(context.Background(), ts.URL, testRetryPolicy(5))

	if !result.Success {
		t.Fatalf("Expected eventual success, got error %v", result.Err)
	}
	if requests.Load() != 3 {
		t.Errorf("Server saw %d requests, want 3", requests.Load())
	}
	if string(result.Body) != "recovered" {
		t.Errorf("Body = %q, want %q", result.Body, "recovered")
	}
}

func TestFetchTerminalStatusDoesNotRetry(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := newTestClient()
	result := client.Fetch(context.Background(), ts.URL, testRetryPolicy(5))

	if result.Success {
		t.Fatal("Expected failure for 404 response")
	}
	if requests.Load() != 1 {
		t.Errorf("Server saw %d requests, want 1 (terminal status must not retry)", requests.Load())
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", result.StatusCode, http.StatusNotFound)
	}
	if result.Err != nil {
		t.Errorf("Expected no error summary for terminal status, got %v", result.Err)
	}
}

func TestFetchExhaustsRetries(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := newTestClient()
	result := client.Fetch(context.Background(), ts.URL, testRetryPolicy(2))

	if result.Success {
		t.Fatal("Expected failure after exhausting retries")
	}
	if requests.Load() != 3 {
		t.Errorf("Server saw %d requests, want 3 (initial + 2 retries)", requests.Load())
	}
	if result.Err == nil {
		t.Fatal("Expected an error summarising the failure")
	}
	if !strings.Contains(result.Err.Error(), "fetch failed after 3 attempts") {
		t.Errorf("Error = %q, want attempt summary", result.Err)
	}
}

func TestFetchTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // Nothing is listening any more

	client := newTestClient()
	result := client.Fetch(context.Background(), ts.URL, testRetryPolicy(1))

	if result.Success {
		t.Fatal("Expected failure for unreachable server")
	}
	if result.Err == nil {
		t.Fatal("Expected a transport error")
	}
	if !strings.Contains(result.Err.Error(), "fetch failed after 2 attempts") {
		t.Errorf("Error = %q, want attempt summary", result.Err)
	}
}

func TestFetchRetryAfterOverridesBackoff(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	// A computed backoff of 5s would blow the deadline below; the Retry-After
	// of zero seconds must win.
	policy := RetryPolicy{
		MaxRetries:        1,
		InitialBackoff:    5 * time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}

	client := newTestClient()
	start := time.Now()
	result := client.Fetch(context.Background(), ts.URL, policy)
	elapsed := time.Since(start)

	if !result.Success {
		t.Fatalf("Expected success after rate-limit retry, got %v", result.Err)
	}
	if requests.Load() != 2 {
		t.Errorf("Server saw %d requests, want 2", requests.Load())
	}
	if elapsed > 2*time.Second {
		t.Errorf("Fetch took %v, expected Retry-After: 0 to skip the computed backoff", elapsed)
	}
}
