package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pageFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pager_page_fetches_total",
		Help: "Total page fetches issued to the data source by resource and result",
	}, []string{"resource", "result"})

	pageFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pager_page_fetch_duration_seconds",
		Help:    "Duration of page fetches by resource",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"resource"})

	prefetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pager_prefetches_total",
		Help: "Next-page prefetch decisions by resource and outcome",
	}, []string{"resource", "outcome"}) // "issued", "cached", "failed"

	placeholderRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pager_placeholder_renders_total",
		Help: "Page transitions that showed the previous page as placeholder",
	}, []string{"resource"})

	discardedResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pager_discarded_results_total",
		Help: "Fetch results that arrived after their page was abandoned",
	}, []string{"resource"})

	invalidPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pager_invalid_page_values_total",
		Help: "Page values in the location that were coerced to the default page",
	})
)
