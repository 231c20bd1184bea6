// ABOUTME: HTTP server wiring: router, middleware, and route registration
// ABOUTME: Exposes chat, calendar, auth, health, and metrics endpoints as JSON
package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harperreed/mindcoach/handlers"
)

type Server struct {
	router   *mux.Router
	chat     *handlers.ChatHandlers
	calendar *handlers.CalendarHandlers
	auth     *handlers.AuthHandlers
}

func NewServer(chat *handlers.ChatHandlers, calendar *handlers.CalendarHandlers, authHandlers *handlers.AuthHandlers) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		chat:     chat,
		calendar: calendar,
		auth:     authHandlers,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.router.HandleFunc("/chat", metricsMiddleware("/chat", s.chat.HandleStatus)).Methods("GET")
	s.router.HandleFunc("/chat", metricsMiddleware("/chat", s.chat.HandleChat)).Methods("POST")

	s.router.HandleFunc("/calendar/events", metricsMiddleware("/calendar/events", s.calendar.HandleListEvents)).Methods("GET")
	s.router.HandleFunc("/calendar/events", metricsMiddleware("/calendar/events", s.calendar.HandleCreateEvent)).Methods("POST")
	s.router.HandleFunc("/calendar/events/{id}", metricsMiddleware("/calendar/events/{id}", s.calendar.HandleDeleteEvent)).Methods("DELETE")

	s.router.HandleFunc("/auth/login", s.auth.HandleLogin).Methods("GET")
	s.router.HandleFunc("/auth/callback", s.auth.HandleCallback).Methods("GET")
	s.router.HandleFunc("/auth/logout", s.auth.HandleLogout).Methods("POST")
	s.router.HandleFunc("/auth/session", s.auth.HandleSession).Methods("GET")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// Router returns the handler with middleware applied, for tests and Start.
func (s *Server) Router() http.Handler {
	return corsMiddleware(loggingMiddleware(s.router))
}

// Start blocks serving HTTP on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("[web] listening at http://localhost%s", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Write timeout must cover the chat turn budget.
		WriteTimeout: 60 * time.Second,
	}
	return server.ListenAndServe()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[web] %s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
