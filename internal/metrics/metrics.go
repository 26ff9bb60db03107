// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shortlink_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shortlink_http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// URLsCreated counts newly minted short codes.
	URLsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortlink_urls_created_total",
		Help: "Short codes created",
	})

	// URLsDeduplicated counts shorten requests answered with an existing code.
	URLsDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortlink_urls_deduplicated_total",
		Help: "Shorten requests answered with an existing short code",
	})

	// CodeCollisions counts generated codes that were already taken.
	CodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortlink_code_collisions_total",
		Help: "Generated short codes that collided with an existing one",
	})

	Redirects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortlink_redirects_total",
		Help: "Successful short code redirects",
	})

	// ClickEvents counts processed click events by outcome: stored, dropped or failed.
	ClickEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortlink_click_events_total",
		Help: "Click events by processing outcome",
	}, []string{"outcome"})

	ClickQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shortlink_click_queue_depth",
		Help: "Click events waiting in the processing queue",
	})

	SweptClicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortlink_swept_clicks_total",
		Help: "Click events deleted by the retention sweeper",
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortlink_cache_lookups_total",
		Help: "Short code cache lookups by result: hit, miss or error",
	}, []string{"result"})
)

// Middleware records request counts and latencies labelled with the matched
// route pattern to keep cardinality low.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
