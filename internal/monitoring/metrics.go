// Package monitoring holds the Prometheus metrics for the moderation
// pipeline and the HTTP instrumentation middleware.
package monitoring

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MediaIngested counts finalize events that completed the automatic
	// pipeline, labeled by the resulting decision.
	MediaIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_media_ingested_total",
		Help: "Media items ingested through the automatic pipeline, by decision.",
	}, []string{"decision"})

	// AdminActions counts admin moderation calls, labeled by action and
	// outcome.
	AdminActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_admin_actions_total",
		Help: "Admin moderation actions, by action and outcome.",
	}, []string{"action", "outcome"})

	// StorageErrors counts object store failures that were swallowed or
	// retried, by operation.
	StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_storage_errors_total",
		Help: "Object storage operation failures, by operation.",
	}, []string{"op"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the underlying writer so websocket upgrades
// keep working behind this middleware.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Middleware records request latency per method/route/status. Register it
// on the mux router (Use), not around it: the path label is the matched
// route template, so /users/{uid}/ban stays one series across uids.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		requestDuration.WithLabelValues(
			r.Method,
			routePath(r),
			strconv.Itoa(wrapped.status),
		).Observe(time.Since(start).Seconds())
	})
}

func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}
