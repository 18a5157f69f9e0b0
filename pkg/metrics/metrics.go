// Package metrics provides Prometheus metrics for the webdesk server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Terminal metrics
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webdesk_shell_commands_total",
			Help: "Total terminal commands executed",
		},
		[]string{"command", "status"},
	)

	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webdesk_shell_command_duration_seconds",
			Help:    "Terminal command duration in seconds, simulated delays included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	// Window manager metrics
	windowsOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "webdesk_windows_open",
			Help: "Number of open windows per user",
		},
		[]string{"user"},
	)

	windowEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webdesk_window_events_total",
			Help: "Window lifecycle events",
		},
		[]string{"event"},
	)

	// File system metrics
	treeSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "webdesk_fs_nodes",
			Help: "Number of files and folders in a user's file system",
		},
		[]string{"user"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webdesk_fs_uploads_total",
			Help: "Total file uploads",
		},
		[]string{"source", "status"},
	)

	// Store metrics
	storeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webdesk_store_operation_duration_seconds",
			Help:    "Snapshot store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "operation"},
	)

	storeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webdesk_store_operations_total",
			Help: "Total snapshot store operations",
		},
		[]string{"driver", "operation", "status"},
	)

	desktopsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webdesk_desktops_loaded",
			Help: "Number of desktops held in memory",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCommand records one executed terminal command.
func RecordCommand(name string, failed bool, duration time.Duration) {
	commandsTotal.WithLabelValues(name, status(!failed)).Inc()
	commandDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// SetWindowsOpen sets the number of open windows for a user.
func SetWindowsOpen(user string, count int) {
	windowsOpen.WithLabelValues(user).Set(float64(count))
}

// RecordWindowEvent counts a window lifecycle event (open, close, ...).
func RecordWindowEvent(event string) {
	windowEventsTotal.WithLabelValues(event).Inc()
}

// SetTreeSize sets the node count of a user's file system.
func SetTreeSize(user string, nodes int) {
	treeSize.WithLabelValues(user).Set(float64(nodes))
}

// RecordUpload records a file upload from the given source (api, inbox).
func RecordUpload(source string, success bool) {
	uploadsTotal.WithLabelValues(source, status(success)).Inc()
}

// RecordStoreOperation records a snapshot store operation.
func RecordStoreOperation(driver, operation string, duration time.Duration, success bool) {
	storeOperationDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
	storeOperationsTotal.WithLabelValues(driver, operation, status(success)).Inc()
}

// SetDesktopsLoaded sets the number of desktops held in memory.
func SetDesktopsLoaded(count int) {
	desktopsLoaded.Set(float64(count))
}

// Middleware records request metrics labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		RecordHTTPRequest(r.Method, route, code, time.Since(start))
	})
}
