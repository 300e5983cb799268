// Package metrics exposes the Prometheus metrics of the category pager.
// All metrics are defined in their respective packages (categories, cache,
// pagination) via promauto and registered with the default registry.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Registry is the default Prometheus registry used by the pager.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the counterpart of Registry served by Handler.
var Gatherer = prometheus.DefaultGatherer

const shutdownTimeout = 5 * time.Second

// Handler returns the HTTP handler serving /metrics and /health.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", healthHandler)
	return mux
}

// Serve runs the metrics endpoint on addr until ctx is done.
// It returns nil after a clean shutdown.
func Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("Starting metrics server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	logger.Info().Msg("Metrics server stopped")
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// Metrics Documentation
//
// Catalog API Metrics (pkg/categories):
//   - pager_api_requests_total{operation, status} (Counter): Requests by operation and HTTP status
//   - pager_api_request_duration_seconds{operation} (Histogram): Request duration by operation
//   - pager_api_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//   - pager_api_retries_total{error_class} (Counter): Retry attempts by error class
//   - pager_api_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - pager_api_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//   - pager_api_breaker_state (Gauge): Circuit breaker state (0 closed, 1 half-open, 2 open)
//
// Cache Metrics (pkg/cache):
//   - pager_cache_hits_total{layer} (Counter): Cache hits by layer (memory, redis)
//   - pager_cache_misses_total{layer} (Counter): Cache misses by layer
//   - pager_cache_entries{layer} (Gauge): Entries held by the memory store
//   - pager_cache_errors_total{operation} (Counter): Cache operation errors
//
// Pagination Metrics (pkg/pagination):
//   - pager_page_fetches_total{resource, result} (Counter): Page fetches by result (ok, error)
//   - pager_page_fetch_duration_seconds{resource} (Histogram): Page fetch duration
//   - pager_prefetches_total{resource, outcome} (Counter): Next-page warms (issued, cached, failed)
//   - pager_placeholder_renders_total{resource} (Counter): Page changes shown with the previous page
//   - pager_discarded_results_total{resource} (Counter): Results of abandoned pages not shown
//   - pager_invalid_page_values_total (Counter): Page values coerced to the first page
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(pager_cache_hits_total[5m])) /
//   (sum(rate(pager_cache_hits_total[5m])) + sum(rate(pager_cache_misses_total[5m])))
//
//   # Prefetch Effectiveness
//   rate(pager_prefetches_total{outcome="issued"}[5m]) / rate(pager_page_fetches_total[5m])
//
//   # P95 Page Fetch Latency
//   histogram_quantile(0.95, rate(pager_page_fetch_duration_seconds_bucket[5m]))
