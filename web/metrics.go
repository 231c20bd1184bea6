// ABOUTME: Prometheus metrics for the HTTP surface
// ABOUTME: Counts requests by route and status plus chat turns and calendar writes
package web

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindcoach_http_requests_total",
		Help: "HTTP requests by method, route, and status code.",
	}, []string{"method", "route", "status"})

	chatTurnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindcoach_chat_turns_total",
		Help: "Chat turns accepted by POST /chat.",
	})

	calendarWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindcoach_calendar_writes_total",
		Help: "Calendar create and delete requests.",
	})
)

// statusRecorder captures the response code for the request counter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func metricsMiddleware(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()

		if rec.status < 400 {
			switch {
			case route == "/chat" && r.Method == http.MethodPost:
				chatTurnsTotal.Inc()
			case route == "/calendar/events" && r.Method == http.MethodPost:
				calendarWritesTotal.Inc()
			case route == "/calendar/events/{id}" && r.Method == http.MethodDelete:
				calendarWritesTotal.Inc()
			}
		}
	}
}
