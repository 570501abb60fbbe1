package middleware

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight *prometheus.GaugeVec
)

func registerHTTPMetrics() {
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridcast_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})
	httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gridcast_http_request_seconds",
		Help:    "HTTP request latency",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status"})
	httpInFlight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gridcast_http_in_flight_requests",
		Help: "HTTP requests currently being served",
	}, []string{"route", "method"})
	prometheus.MustRegister(httpRequests, httpLatency, httpInFlight)
}

// Metrics counts and times every request. The route label is the raw
// URL path; the API surface is a handful of fixed routes so
// cardinality stays bounded. Requests slower than slowThreshold are
// logged.
func Metrics(slowThreshold time.Duration) func(http.Handler) http.Handler {
	metricsOnce.Do(registerHTTPMetrics)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, method := r.URL.Path, r.Method

			httpInFlight.WithLabelValues(route, method).Inc()
			start := time.Now()

			cw := &countingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, r)

			dur := time.Since(start)
			status := strconv.Itoa(cw.status)

			httpRequests.WithLabelValues(route, method, status).Inc()
			httpLatency.WithLabelValues(route, method, status).Observe(dur.Seconds())
			httpInFlight.WithLabelValues(route, method).Dec()

			if slowThreshold > 0 && dur >= slowThreshold {
				log.Printf("slow request: %s %s status=%s took=%s bytes=%d",
					method, route, status, dur, cw.written)
			}
		})
	}
}

type countingWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *countingWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *countingWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}
