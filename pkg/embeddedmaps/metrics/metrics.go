// Package metrics exposes Prometheus counters for map rendering and the
// HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/simple-maps/pkg/embeddedmaps"
)

// Fragment kinds reported by the fragments_total counter.
const (
	KindFrame   = "frame"
	KindAddress = "address"
	KindEmpty   = "empty"
)

// Metrics owns a registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	fragments       *prometheus.CounterVec
	mapsEmbedded    prometheus.Counter
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates and registers the collectors under namespace
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fragments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "render",
				Name:      "fragments_total",
				Help:      "Rendered map fragments by kind",
			},
			[]string{"kind"},
		),
		mapsEmbedded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "render",
				Name:      "maps_embedded_total",
				Help:      "Maps recorded in a rendering pass",
			},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method", "status"},
		),
	}
	m.registry.MustRegister(m.fragments, m.mapsEmbedded, m.requestsTotal, m.requestDuration)
	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks counts embedded maps and classifies every rendered fragment.
// Register them before output filters that rewrite markup.
func (m *Metrics) Hooks() *embeddedmaps.Hooks {
	return &embeddedmaps.Hooks{
		Output: []embeddedmaps.OutputFilterHook{
			func(hctx *embeddedmaps.HookContext, html string) (string, error) {
				m.fragments.WithLabelValues(FragmentKind(html)).Inc()
				return html, nil
			},
		},
		MapEmbedded: []embeddedmaps.MapEmbeddedHook{
			func(hctx *embeddedmaps.HookContext, index int, venueID embeddedmaps.PostID) error {
				m.mapsEmbedded.Inc()
				return nil
			},
		},
	}
}

// FragmentKind classifies renderer output
func FragmentKind(html string) string {
	switch {
	case strings.Contains(html, `class="tribe-events-osm-map"`):
		return KindFrame
	case strings.Contains(html, `class="tribe-events-osm-address"`):
		return KindAddress
	default:
		return KindEmpty
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Middleware instruments requests. The chi route pattern is used as the
// path label when available to keep cardinality low.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)

		path := routePatternOrPath(r)
		status := strconv.Itoa(sr.status)
		m.requestsTotal.WithLabelValues(path, r.Method, status).Inc()
		m.requestDuration.WithLabelValues(path, r.Method, status).Observe(time.Since(start).Seconds())
	})
}

func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
