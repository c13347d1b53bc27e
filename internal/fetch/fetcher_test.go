package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig() *Config {
	config := DefaultConfig()
	config.InitialInterval = time.Millisecond
	config.MaxInterval = 5 * time.Millisecond
	config.Timeout = 2 * time.Second
	return config
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.MaxAttempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", config.MaxAttempts)
	}
	if config.Timeout != 15*time.Second {
		t.Errorf("Expected 15s timeout, got %v", config.Timeout)
	}
	want := map[int]bool{500: true, 502: true, 503: true, 504: true}
	if len(config.RetryStatuses) != len(want) {
		t.Fatalf("Unexpected retry statuses: %v", config.RetryStatuses)
	}
	for _, code := range config.RetryStatuses {
		if !want[code] {
			t.Errorf("Unexpected retry status %d", code)
		}
	}
}

func TestFetch_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	f := NewFetcher(testConfig())
	body, err := f.Fetch(context.Background(), server.URL+"/dictionary/english/abide")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if body != "<html>ok</html>" {
		t.Errorf("Unexpected body: %q", body)
	}
	if gotUA != UserAgent {
		t.Errorf("Expected browser User-Agent, got %q", gotUA)
	}
}

func TestFetch_RetriesTransientStatus(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	f := NewFetcher(testConfig())
	body, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if body != "recovered" {
		t.Errorf("Unexpected body: %q", body)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestFetch_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewFetcher(testConfig())
	_, err := f.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !errors.Is(err, ErrStatus) {
		t.Errorf("Expected ErrStatus, got %v", err)
	}
	if calls != 5 {
		t.Errorf("Expected 5 attempts, got %d", calls)
	}
}

func TestFetch_NoRetryOnClientError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(testConfig())
	_, err := f.Fetch(context.Background(), server.URL)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", statusErr.StatusCode)
	}
	if calls != 1 {
		t.Errorf("Expected a single attempt, got %d", calls)
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	config := testConfig()
	config.Timeout = 20 * time.Millisecond
	config.MaxAttempts = 2

	f := NewFetcher(config)
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Expected timeout error")
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	f := NewFetcher(testConfig())
	if _, err := f.Fetch(context.Background(), "://bad url"); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

type memoryCache struct {
	pages map[string]string
	puts  int
}

func (m *memoryCache) Get(ctx context.Context, url string) (string, bool, error) {
	body, ok := m.pages[url]
	return body, ok, nil
}

func (m *memoryCache) Put(ctx context.Context, url, body string) error {
	m.pages[url] = body
	m.puts++
	return nil
}

func TestFetch_UsesCache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte("fresh"))
	}))
	defer server.Close()

	cache := &memoryCache{pages: map[string]string{}}
	f := NewFetcher(testConfig(), WithCache(cache))

	for i := 0; i < 3; i++ {
		body, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if body != "fresh" {
			t.Errorf("Unexpected body: %q", body)
		}
	}

	if calls != 1 {
		t.Errorf("Expected 1 network call, got %d", calls)
	}
	if cache.puts != 1 {
		t.Errorf("Expected 1 cache write, got %d", cache.puts)
	}
}

func TestIsIdempotent(t *testing.T) {
	tests := map[string]bool{
		http.MethodGet:     true,
		http.MethodHead:    true,
		http.MethodOptions: true,
		http.MethodPost:    false,
		http.MethodPut:     false,
	}
	for method, want := range tests {
		if got := isIdempotent(method); got != want {
			t.Errorf("isIdempotent(%s) = %v, want %v", method, got, want)
		}
	}
}

func TestDo_NonIdempotentNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := NewFetcher(testConfig())
	if _, err := f.do(context.Background(), http.MethodPost, server.URL); err == nil {
		t.Error("Expected error")
	}
	if calls != 1 {
		t.Errorf("Expected POST to be tried once, got %d", calls)
	}
}
