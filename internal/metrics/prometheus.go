package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "songbook"

// PrometheusRecorder exports Recorder events as Prometheus collectors.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	songWrites     *prometheus.CounterVec
	catalogCache   *prometheus.CounterVec
	logins         *prometheus.CounterVec
	authRejections *prometheus.CounterVec
	requests       *prometheus.HistogramVec
}

// NewPrometheus returns a Recorder backed by its own registry,
// including the Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,

		// Labels:
		//   - op: "create", "update", "delete"
		songWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "song_writes_total",
				Help:      "Total number of successful song writes",
			},
			[]string{"op"},
		),

		// Labels:
		//   - result: "hit", "miss"
		catalogCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_cache_lookups_total",
				Help:      "Distinct-list cache lookups by result",
			},
			[]string{"result"},
		),

		logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),

		authRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_rejections_total",
				Help:      "Requests rejected by the bearer token gate",
			},
			[]string{"reason"},
		),

		requests: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusRecorder) IncSongCreated() { p.songWrites.WithLabelValues("create").Inc() }
func (p *PrometheusRecorder) IncSongUpdated() { p.songWrites.WithLabelValues("update").Inc() }
func (p *PrometheusRecorder) IncSongDeleted() { p.songWrites.WithLabelValues("delete").Inc() }

func (p *PrometheusRecorder) IncCatalogCacheHit()  { p.catalogCache.WithLabelValues("hit").Inc() }
func (p *PrometheusRecorder) IncCatalogCacheMiss() { p.catalogCache.WithLabelValues("miss").Inc() }

// IncLogin counts a login attempt by outcome.
func (p *PrometheusRecorder) IncLogin(outcome string) {
	p.logins.WithLabelValues(outcome).Inc()
}

// IncAuthRejected counts a rejected request by reason.
func (p *PrometheusRecorder) IncAuthRejected(reason string) {
	p.authRejections.WithLabelValues(reason).Inc()
}

// ObserveRequest records the latency of a served request.
// route is the matched route pattern, never the raw path.
func (p *PrometheusRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
