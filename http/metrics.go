package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"simpleTwitter/domain"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

// initMetrics creates the request metrics on a registry owned by the server,
// so several servers (as in tests) never collide.
func (s *Server) initMetrics() {
	s.registry = prometheus.NewRegistry()
	s.requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "simpletwitter",
		Subsystem: "api",
		Name:      "http_requests_total",
		Help:      "Count of processed HTTP requests",
	}, []string{"method", "route", "status"})
	s.requestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "simpletwitter",
		Subsystem: "api",
		Name:      "http_request_duration_seconds",
		Help:      "Latency distribution of HTTP handlers",
		Buckets:   histogramBuckets,
	}, []string{"method", "route", "status"})
	s.registry.MustRegister(
		s.requestTotal,
		s.requestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// statusRecorder remembers the status code written by a handler and the principal
// the authorization gate let through.
type statusRecorder struct {
	http.ResponseWriter
	status    int
	principal *domain.User
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// setPrincipal records the principal of a request for the access log.
func setPrincipal(w http.ResponseWriter, principal *domain.User) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.principal = principal
	}
}

// unmatchedRoute labels requests no route accepts, keeping raw paths out of the metrics.
const unmatchedRoute = "unmatched"

// routeTemplate returns the path template of the route a request is going to be served by.
func (s *Server) routeTemplate(r *http.Request) string {
	var match mux.RouteMatch
	if !s.router.Match(r, &match) || match.MatchErr != nil || match.Route == nil {
		return unmatchedRoute
	}
	tpl, err := match.Route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}
	return tpl
}

// The observe middleware records the request metrics and writes the access log.
// It wraps the whole router, so unknown routes and wrong methods are observed too.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := s.routeTemplate(r)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(rec.status),
		}
		s.requestTotal.With(labels).Inc()
		s.requestLatency.With(labels).Observe(duration.Seconds())

		fields := logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": duration,
		}
		if rec.principal != nil {
			fields["user_id"] = rec.principal.ID
		}
		logrus.WithFields(fields).Debug("request")
	})
}
