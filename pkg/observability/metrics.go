package observability

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration observes HTTP request latency by method and status.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hangouts",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})

	// OptimisticConflicts counts version-check failures that triggered a
	// retry of a conditional read-modify-write.
	OptimisticConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hangouts",
		Name:      "optimistic_conflicts_total",
		Help:      "Optimistic lock conflicts that caused a retry.",
	})

	// OptimisticExhaustions counts operations that gave up after the bounded
	// retry budget and surfaced a Conflict to the caller.
	OptimisticExhaustions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hangouts",
		Name:      "optimistic_exhaustions_total",
		Help:      "Optimistic updates that exhausted their retry budget.",
	})

	// FanoutChunkFailures counts transactional fan-out chunks that failed and
	// left their pointers stale until the next propagation.
	FanoutChunkFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hangouts",
		Name:      "fanout_chunk_failures_total",
		Help:      "Failed pointer fan-out transaction chunks.",
	})

	// FeedNotModified counts feed reads short-circuited by the ETag gate.
	FeedNotModified = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hangouts",
		Name:      "feed_not_modified_total",
		Help:      "Feed requests answered with 304 Not Modified.",
	})
)

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request duration for every handled request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		RequestDuration.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
