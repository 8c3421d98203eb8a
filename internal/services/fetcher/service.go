package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/geoscope/internal/interfaces"
)

const (
	// DefaultTimeout bounds each request so one unresponsive source
	// cannot block the batch.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10

	// DefaultMaxBodySize caps response bodies at 50MB.
	DefaultMaxBodySize = 50 * 1024 * 1024
)

// Service implements interfaces.FetchService
type Service struct {
	httpClient  *http.Client
	logger      arbor.ILogger
	limiter     *rate.Limiter
	maxBodySize int
	userAgent   string
}

// Compile-time assertion
var _ interfaces.FetchService = (*Service)(nil)

// Option configures the Service.
type Option func(*Service)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.httpClient = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) Option {
	return func(s *Service) {
		s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithMaxBodySize caps the response body size in bytes.
func WithMaxBodySize(size int) Option {
	return func(s *Service) {
		s.maxBodySize = size
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(userAgent string) Option {
	return func(s *Service) {
		s.userAgent = userAgent
	}
}

// NewService creates a new fetch service.
func NewService(logger arbor.ILogger, opts ...Option) *Service {
	s := &Service{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:      logger,
		limiter:     rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		maxBodySize: DefaultMaxBodySize,
		userAgent:   "geoscope/1.0",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// FetchAll retrieves every URL concurrently under a single coordinating
// scope and waits for all to complete. Empty or whitespace-only URLs are
// skipped before dispatch. Results are returned in dispatch order, each
// carrying either a payload or its own error.
func (s *Service) FetchAll(ctx context.Context, urls []string) []interfaces.FetchResult {
	var dispatched []string
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			continue
		}
		dispatched = append(dispatched, u)
	}

	if len(dispatched) == 0 {
		return nil
	}

	results := make([]interfaces.FetchResult, len(dispatched))
	var wg sync.WaitGroup

	for i, u := range dispatched {
		wg.Add(1)
		go func(idx int, url string) {
			defer wg.Done()
			results[idx] = s.Fetch(ctx, url)
		}(i, u)
	}

	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Err == nil {
			succeeded++
		}
	}
	s.logger.Info().
		Int("dispatched", len(dispatched)).
		Int("succeeded", succeeded).
		Int("failed", len(dispatched)-succeeded).
		Msg("Source fetch batch complete")

	return results
}

// Fetch retrieves a single URL and validates the body parses as JSON.
func (s *Service) Fetch(ctx context.Context, url string) interfaces.FetchResult {
	result := interfaces.FetchResult{URL: url}

	if err := s.limiter.Wait(ctx); err != nil {
		result.Err = &FetchError{URL: url, Message: "rate limiter interrupted", Err: err}
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Err = &FetchError{URL: url, Message: "failed to create request", Err: err}
		return result
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	s.logger.Debug().Str("url", url).Msg("Fetching source")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		result.Err = &FetchError{URL: url, Message: "request failed", Err: err}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		result.Err = &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
		return result
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(s.maxBodySize)))
	if err != nil {
		result.Err = &FetchError{URL: url, Message: "failed to read response body", Err: err}
		return result
	}

	if !json.Valid(body) {
		result.Err = &FetchError{URL: url, Message: "response is not valid JSON"}
		return result
	}

	result.Payload = body
	return result
}
