package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openvault-labs/yieldrouter/internal/logger"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes the engine's status over HTTP: health, the active
// parameters, the latest decision, and the latest opportunity ranking.
type WebServer struct {
	router *mux.Router
	addr   string
	status *StatusStore
	start  time.Time
}

// NewWebServer creates a new web server instance reading from the given
// status store.
func NewWebServer(addr string, status *StatusStore) *WebServer {
	if addr == "" {
		addr = ":8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		addr:   addr,
		status: status,
		start:  time.Now(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")
	ws.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/parameters", ws.handleGetParameters).Methods("GET")
	api.HandleFunc("/decision/latest", ws.handleGetLatestDecision).Methods("GET")
	api.HandleFunc("/opportunities", ws.handleGetOpportunities).Methods("GET")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server and blocks until it exits.
func (ws *WebServer) Start() error {
	webLogger.Info().Str("addr", ws.addr).Msg("Starting web server")

	server := &http.Server{
		Addr:         ws.addr,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	ws.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(ws.start).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"heap_alloc_mb":  memStats.HeapAlloc / 1024 / 1024,
		"timestamp":      time.Now().UTC(),
	})
}

// handleGetParameters returns the active engine parameter set
func (ws *WebServer) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, http.StatusOK, ws.status.Parameters())
}

// handleGetLatestDecision returns the most recent cycle's decision
func (ws *WebServer) handleGetLatestDecision(w http.ResponseWriter, r *http.Request) {
	cycleID, decision, ok := ws.status.LatestDecision()
	if !ok {
		ws.writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no cycle has completed yet",
		})
		return
	}
	ws.writeJSON(w, http.StatusOK, map[string]interface{}{
		"cycle_id": cycleID,
		"decision": decision,
	})
}

// handleGetOpportunities returns the most recent ranked opportunity list
func (ws *WebServer) handleGetOpportunities(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, http.StatusOK, ws.status.Opportunities())
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
