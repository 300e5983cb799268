package categories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Prometheus metrics for catalog API operations.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pager_api_requests_total",
		Help: "Total catalog API requests by operation and status",
	}, []string{"operation", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pager_api_request_duration_seconds",
		Help:    "Catalog API request duration in seconds by operation",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"operation"})

	apiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pager_api_errors_total",
		Help: "Total catalog API errors by class",
	}, []string{"class"})

	apiRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pager_api_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	apiRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pager_api_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 20},
	}, []string{"error_class"})

	apiRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pager_api_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})

	apiBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pager_api_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	})
)

// maxErrorBody bounds how much of an error response is kept in APIError.Message.
const maxErrorBody = 512

// Config holds the client configuration.
type Config struct {
	// BaseURL is the catalog API root, e.g. "http://localhost:8000".
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration

	// Retry controls attempts and backoff for retriable errors.
	Retry RetryConfig

	// BreakerFailures is the number of consecutive failed calls that opens
	// the circuit breaker. Zero disables the breaker.
	BreakerFailures uint32

	// BreakerCooldown is how long the breaker stays open before probing.
	BreakerCooldown time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		UserAgent:       "category-pager/0.1.0",
		Timeout:         10 * time.Second,
		Retry:           DefaultRetryConfig(),
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// Client lists categories from the catalog API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config
	breaker    *gobreaker.CircuitBreaker
	logger     zerolog.Logger
}

// New creates a new catalog API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry = DefaultRetryConfig()
	}

	logger := log.With().Str("component", "catalog-client").Logger()

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		config:     cfg,
		logger:     logger,
	}

	if cfg.BreakerFailures > 0 {
		failures := cfg.BreakerFailures
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "catalog-api",
			Timeout: cfg.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: func(err error) bool {
				// a 4xx says nothing about the health of the API
				return err == nil || classifyError(err) == ErrorClassClient || errors.Is(err, ErrContextCancelled) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				apiBreakerState.Set(float64(to))
				logger.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Circuit breaker state changed")
			},
		})
	}

	return c, nil
}

// ListCategories returns up to limit categories starting at offset.
func (c *Client) ListCategories(ctx context.Context, offset, limit int) ([]Category, error) {
	if offset < 0 {
		return nil, fmt.Errorf("offset must be >= 0 (got %d)", offset)
	}
	if limit < 1 {
		return nil, fmt.Errorf("limit must be >= 1 (got %d)", limit)
	}

	values, err := query.Values(ListParams{Skip: offset, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("encode list params: %w", err)
	}
	endpoint := c.baseURL + ListPath + "?" + values.Encode()

	call := func() ([]Category, error) {
		var items []Category
		err := retryWithBackoff(ctx, c.config.Retry, c.logger, func() error {
			var attemptErr error
			items, attemptErr = c.list(ctx, endpoint)
			return attemptErr
		})
		return items, err
	}

	if c.breaker == nil {
		return call()
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return call()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			apiRequestsTotal.WithLabelValues("list", "breaker_open").Inc()
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}
	return result.([]Category), nil
}

// list performs a single GET attempt and decodes the category array.
func (c *Client) list(ctx context.Context, endpoint string) ([]Category, error) {
	startTime := time.Now()
	defer func() {
		apiRequestDuration.WithLabelValues("list").Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &APIError{ErrorClass: ErrorClassClient, Message: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	c.logger.Debug().Str("url", endpoint).Msg("Executing catalog request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		apiRequestsTotal.WithLabelValues("list", "network_error").Inc()
		c.logger.Warn().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return nil, err
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	apiRequestsTotal.WithLabelValues("list", status).Inc()

	if errClass := classifyStatus(resp.StatusCode); errClass != "" {
		apiErrorsTotal.WithLabelValues(string(errClass)).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = resp.Status
		}
		c.logger.Warn().
			Str("url", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Catalog request error")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    message,
		}
	}

	var items []Category
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "decode category list",
			Err:        err,
		}
	}
	if items == nil {
		items = []Category{}
	}

	return items, nil
}
