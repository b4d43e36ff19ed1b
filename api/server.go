package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"amoeba-trading/database"
	"amoeba-trading/intelligence"
	"amoeba-trading/memory"
	"amoeba-trading/notifications"
	"amoeba-trading/realtime"
	"amoeba-trading/websocket"
)

// APIVersion identifies the webhook API generation.
const APIVersion = "2.0.0"

// Server handles HTTP API requests
type Server struct {
	learner       *memory.Learner
	assessor      *intelligence.Assessor
	notifier      *notifications.WebhookManager
	broker        *realtime.Broker
	hub           *websocket.Hub
	repo          *database.SignalRepository // nil when the audit log is disabled
	webhookSecret string
}

// NewServer creates a new API server instance. repo may be nil.
func NewServer(learner *memory.Learner, assessor *intelligence.Assessor,
	notifier *notifications.WebhookManager, broker *realtime.Broker,
	hub *websocket.Hub, repo *database.SignalRepository, webhookSecret string) *Server {

	return &Server{
		learner:       learner,
		assessor:      assessor,
		notifier:      notifier,
		broker:        broker,
		hub:           hub,
		repo:          repo,
		webhookSecret: webhookSecret,
	}
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	// Signal ingestion
	mux.HandleFunc("POST /api/v1/webhooks/tradingview", s.handleTradingViewWebhook)
	mux.HandleFunc("GET /api/v1/webhooks/status", s.handleWebhookStatus)
	mux.HandleFunc("GET /api/v1/webhooks/test", s.handleWebhookTest)
	mux.HandleFunc("POST /api/v1/webhooks/debug", s.handleWebhookDebug)

	// Pattern memory
	mux.HandleFunc("GET /api/memory/stats", s.handleMemoryStats)
	mux.HandleFunc("GET /api/memory/symbols", s.handleMemorySymbols)
	mux.HandleFunc("POST /api/memory/query", s.handleMemoryQuery)
	mux.HandleFunc("POST /api/memory/reinforce", s.handleReinforce)

	// Signal audit log (requires database)
	mux.HandleFunc("GET /api/signals/history", s.handleSignalHistory)

	// Notification listener management
	mux.HandleFunc("GET /api/config/listeners", s.handleGetListeners)
	mux.HandleFunc("POST /api/config/listeners", s.handleRegisterListener)

	// Live streams
	mux.Handle("GET /api/events", s.broker) // SSE endpoint
	mux.Handle("GET /ws", s.hub)            // Dashboard WebSocket

	mux.HandleFunc("GET /health", s.handleHealth)

	// Serve Static Files (Public UI)
	fs := http.FileServer(http.Dir("./public"))
	mux.Handle("GET /", fs)

	// Add middleware
	handler := s.corsMiddleware(s.loggingMiddleware(mux))

	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Printf("🚀 API Server starting on %s", serverAddr)
	return http.ListenAndServe(serverAddr, handler)
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Webhook-Signature")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns the health status of the API
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   APIVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("⚠️  Failed to encode response: %v", err)
	}
}

// respondWithError logs the error and sends a JSON error response
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil {
		log.Printf("API Error [%d]: %s - %v", code, message, err)
	} else {
		log.Printf("API Error [%d]: %s", code, message)
	}
	respondJSON(w, code, map[string]string{"error": message})
}
