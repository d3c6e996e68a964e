package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookcatalog/internal/notify"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bookcatalog",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookcatalog",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bookcatalog",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	booksAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookcatalog",
			Subsystem: "catalog",
			Name:      "books_added_total",
			Help:      "Total number of books added.",
		},
	)

	authorsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bookcatalog",
			Subsystem: "catalog",
			Name:      "authors_created_total",
			Help:      "Total number of authors created by get-or-create.",
		},
	)

	subscribers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "bookcatalog",
			Subsystem: "notify",
			Name:      "subscribers",
			Help:      "Current number of live subscribers per topic.",
		},
		[]string{"topic"},
	)

	deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookcatalog",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Events handed to subscribers, by outcome.",
		},
		[]string{"topic", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		booksAdded,
		authorsCreated,
		subscribers,
		deliveries,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordBookAdded() { booksAdded.Inc() }

func RecordAuthorCreated() { authorsCreated.Inc() }

// BusObserver exports notification bus activity.
type BusObserver struct{}

func (BusObserver) SubscriberCount(topic notify.Topic, n int) {
	subscribers.WithLabelValues(string(topic)).Set(float64(n))
}

func (BusObserver) Delivered(topic notify.Topic) {
	deliveries.WithLabelValues(string(topic), "delivered").Inc()
}

func (BusObserver) Dropped(topic notify.Topic) {
	deliveries.WithLabelValues(string(topic), "dropped").Inc()
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// canonicalPath keeps at most two leading segments so label cardinality stays
// bounded (author names and ids never reach a label).
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return "/" + strings.Join(parts, "/")
}
