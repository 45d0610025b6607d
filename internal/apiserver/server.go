// Package apiserver provides the REST front end for the release copilot
// agent: a health check, a chat endpoint and a set of example queries.
package apiserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/releasecopilot/rcagent/internal/agent"
	"github.com/releasecopilot/rcagent/internal/log"
)

const (
	serviceName    = "Release Copilot API"
	serviceVersion = "1.0.0"
)

// Runner is the slice of the agent the server needs.
type Runner interface {
	Run(ctx context.Context, query string) (*agent.Response, error)
}

// Server exposes the agent over HTTP.
type Server struct {
	runner Runner
	router *mux.Router
}

// New builds the server around the given runner.
func New(runner Runner) *Server {
	s := &Server{
		runner: runner,
		router: mux.NewRouter(),
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	// Streaming is not implemented yet; the route exists so clients can
	// switch over without URL changes once SSE lands.
	s.router.HandleFunc("/chat/stream", s.handleChat).Methods(http.MethodPost)
	s.router.HandleFunc("/examples", s.handleExamples).Methods(http.MethodGet)
}

// Message is one turn of the returned conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the POST /chat payload.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the POST /chat reply.
type ChatResponse struct {
	Response       string    `json:"response"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Messages       []Message `json:"messages"`
}

// HealthResponse is the health-check payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	resp, err := s.runner.Run(r.Context(), req.Message)
	if err != nil {
		log.Errorf("chat request failed: %v", err)
		http.Error(w, "error processing request: "+err.Error(), http.StatusInternalServerError)
		return
	}

	text := resp.Text
	if text == "" {
		text = "I'm sorry, I couldn't generate a response."
	}
	s.writeJSON(w, http.StatusOK, ChatResponse{
		Response:       text,
		ConversationID: conversationID,
		Messages: []Message{
			{Role: "user", Content: req.Message},
			{Role: "assistant", Content: text},
		},
	})
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	type example struct {
		Query       string `json:"query"`
		Description string `json:"description"`
	}
	s.writeJSON(w, http.StatusOK, map[string][]example{
		"examples": {
			{Query: "What's the status of the payments service in prod?", Description: "Check pipeline status"},
			{Query: "The checkout service failed in staging. What went wrong?", Description: "Analyze deployment failure"},
			{Query: "Can you check the logs for job-456?", Description: "Direct log analysis"},
			{Query: "Show me all failed pipelines", Description: "List failures"},
		},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("write response: %v", err)
	}
}
