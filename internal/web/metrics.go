package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/ShuffleRoster/internal/core"
)

// metrics holds the Prometheus collectors for the roster server.
type metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	loads     *prometheus.CounterVec
	students  prometheus.Histogram
	groupings *prometheus.CounterVec
	exports   *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, service *core.Service) *metrics {
	f := promauto.With(reg)

	m := &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roster_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_files_loaded_total",
			Help: "Roster files loaded, by format and result code.",
		}, []string{"format", "code"}),
		students: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "roster_students_per_file",
			Help:    "Number of students in successfully loaded rosters.",
			Buckets: prometheus.ExponentialBuckets(5, 2, 8),
		}),
		groupings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_groupings_total",
			Help: "Grouping requests by shuffle flag and result code.",
		}, []string{"shuffle", "code"}),
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_exports_total",
			Help: "Exports by format and result code.",
		}, []string{"format", "code"}),
	}

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "roster_sessions_active",
		Help: "Live sessions.",
	}, func() float64 { return float64(service.Len()) })

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "roster_decodes_active",
		Help: "Files being decoded right now.",
	}, func() float64 { return float64(service.DecodeStatus().Active) })

	return m
}

// resultCode labels an outcome: "ok" or the user-facing error code.
func resultCode(err error) string {
	if err == nil {
		return "ok"
	}
	return core.MapError(err).Code
}

func (m *metrics) observeLoad(name string, students int, err error) {
	format, ferr := core.FormatFromFilename(name)
	if ferr != nil {
		format = "other"
	}
	m.loads.WithLabelValues(string(format), resultCode(err)).Inc()
	if err == nil {
		m.students.Observe(float64(students))
	}
}

func (m *metrics) observeGrouping(shuffle bool, err error) {
	if errors.Is(err, core.ErrNoDataLoaded) {
		// Not an attempt at grouping.
		return
	}
	m.groupings.WithLabelValues(strconv.FormatBool(shuffle), resultCode(err)).Inc()
}

func (m *metrics) observeExport(format core.Format, err error) {
	m.exports.WithLabelValues(string(format), resultCode(err)).Inc()
}

// instrument records request counts and latency by route pattern.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
