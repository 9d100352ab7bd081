package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetcherEntries(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testRSS))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), NewParser(), "RSS Relay/test", 5*time.Second)
	entries, err := fetcher.Entries(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(entries))
	}
	if gotUserAgent != "RSS Relay/test" {
		t.Errorf("Expected user agent 'RSS Relay/test', got '%s'", gotUserAgent)
	}
}

func TestFetcherHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), NewParser(), "", time.Second)
	if _, err := fetcher.Entries(context.Background(), server.URL); err == nil {
		t.Error("Expected error for HTTP 404")
	}
}

func TestFetcherInvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>not a feed</body></html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), NewParser(), "", time.Second)
	if _, err := fetcher.Entries(context.Background(), server.URL); err == nil {
		t.Error("Expected parse error for HTML body")
	}
}

func TestFetcherTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), NewParser(), "", 50*time.Millisecond)
	if _, err := fetcher.Entries(context.Background(), server.URL); err == nil {
		t.Error("Expected timeout error")
	}
}
