package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// UserAgent identifies requests as a desktop browser
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ErrStatus is wrapped by every StatusError
var ErrStatus = errors.New("unexpected HTTP status")

// StatusError reports a response status that ended the request
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// Cache stores fetched markup between runs
type Cache interface {
	Get(ctx context.Context, url string) (string, bool, error)
	Put(ctx context.Context, url, body string) error
}

// Config configures a Fetcher
type Config struct {
	Timeout         time.Duration // per attempt
	MaxAttempts     int
	InitialInterval time.Duration // first backoff delay
	MaxInterval     time.Duration
	RetryStatuses   []int
	UserAgent       string
}

// DefaultConfig returns the standard retry policy: 5 attempts, 15s timeout,
// backoff doubling from 1s, retry on 500/502/503/504
func DefaultConfig() *Config {
	return &Config{
		Timeout:         15 * time.Second,
		MaxAttempts:     5,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		RetryStatuses: []int{
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
		UserAgent: UserAgent,
	}
}

// Fetcher downloads pages
type Fetcher struct {
	config *Config
	client *http.Client
	cache  Cache
	log    *slog.Logger
}

// Option customizes a Fetcher
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithCache enables the page cache
func WithCache(cache Cache) Option {
	return func(f *Fetcher) {
		f.cache = cache
	}
}

// WithLogger sets the diagnostics logger
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.log = logger
		}
	}
}

// NewFetcher creates a fetcher, falling back to DefaultConfig for a nil config
func NewFetcher(config *Config, opts ...Option) *Fetcher {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.UserAgent == "" {
		config.UserAgent = UserAgent
	}

	f := &Fetcher{
		config: config,
		client: &http.Client{},
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.With("component", "fetch")
	return f
}

// Fetch GETs url and returns the response body. Every failure, including
// exhausted retries, is returned as an error; callers treat it as not found.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.cache != nil {
		body, ok, err := f.cache.Get(ctx, url)
		if err != nil {
			f.log.WarnContext(ctx, "cache read failed", slog.String("url", url), slog.String("error", err.Error()))
		} else if ok {
			f.log.DebugContext(ctx, "cache hit", slog.String("url", url))
			return body, nil
		}
	}

	body, err := f.do(ctx, http.MethodGet, url)
	if err != nil {
		f.log.ErrorContext(ctx, "fetch failed", slog.String("url", url), slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if f.cache != nil {
		if err := f.cache.Put(ctx, url, body); err != nil {
			f.log.WarnContext(ctx, "cache write failed", slog.String("url", url), slog.String("error", err.Error()))
		}
	}

	return body, nil
}

func (f *Fetcher) do(ctx context.Context, method, url string) (string, error) {
	var body string
	attempt := 0

	operation := func() error {
		attempt++
		b, err := f.attempt(ctx, method, url)
		if err != nil {
			var permanent *backoff.PermanentError
			if errors.As(err, &permanent) {
				return err
			}
			if !isIdempotent(method) || !f.retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}

	notify := func(err error, wait time.Duration) {
		f.log.WarnContext(ctx, "retrying request",
			slog.String("url", url),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
	}

	if err := backoff.RetryNotify(operation, f.newBackOff(ctx), notify); err != nil {
		return "", err
	}
	return body, nil
}

func (f *Fetcher) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.config.InitialInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	if f.config.MaxInterval > 0 {
		b.MaxInterval = f.config.MaxInterval
	}
	// Attempts are bounded by MaxAttempts, not by elapsed time
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.config.MaxAttempts-1)), ctx)
}

// attempt performs a single request bounded by the per-attempt timeout
func (f *Fetcher) attempt(ctx context.Context, method, url string) (string, error) {
	if f.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

// retryable reports whether err is a transport error or a configured status
func (f *Fetcher) retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		for _, code := range f.config.RetryStatuses {
			if statusErr.StatusCode == code {
				return true
			}
		}
		return false
	}
	return true
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
