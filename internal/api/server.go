// ABOUTME: HTTP server wiring routes, auth middleware, and lifecycle.
// ABOUTME: All /api/ routes are JWT-authenticated and user-scoped by path.

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tansell/todochat/internal/auth"
	"github.com/tansell/todochat/internal/chat"
	"github.com/tansell/todochat/internal/store"
)

// Server exposes the chat pipeline and todo read surface over HTTP.
type Server struct {
	store        store.Store
	orchestrator *chat.Orchestrator
	verifier     auth.TokenVerifier
	logger       *slog.Logger
	httpServer   *http.Server
}

// NewServer creates an API server listening on addr once Start is called.
func NewServer(addr string, st store.Store, orchestrator *chat.Orchestrator, verifier auth.TokenVerifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:        st,
		orchestrator: orchestrator,
		verifier:     verifier,
		logger:       logger.With("component", "api"),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the route table. Exposed for httptest in addition to Start.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/ready", s.handleReady)

	authMiddleware := auth.HTTPAuthMiddleware(s.verifier)
	mux.Handle("/api/", authMiddleware(http.HandlerFunc(s.handleAPI)))

	return mux
}

// Start begins serving. Blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleAPI dispatches /api/{user_id}/... routes. The path user must match
// the authenticated identity; mismatches fail 403 before any store access.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/"), "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		s.sendJSONError(w, http.StatusNotFound, "not found")
		return
	}

	userID := parts[0]
	identity := auth.MustFromContext(r.Context())
	if identity.UserID != userID {
		s.sendJSONError(w, http.StatusForbidden, "token does not match requested user")
		return
	}

	switch {
	case parts[1] == "chat" && len(parts) == 2:
		s.handleChat(w, r, userID)
	case parts[1] == "todos" && len(parts) == 2:
		s.handleListTodos(w, r, userID)
	case parts[1] == "conversations" && len(parts) == 2:
		s.handleListConversations(w, r, userID)
	case parts[1] == "conversations" && len(parts) == 3:
		s.handleConversation(w, r, userID, parts[2])
	case parts[1] == "conversations" && len(parts) == 4 && parts[3] == "export":
		s.handleExportConversation(w, r, userID, parts[2])
	default:
		s.sendJSONError(w, http.StatusNotFound, "not found")
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady reports readiness by probing the store with a cheap read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.ListConversations(r.Context(), "readiness-probe"); err != nil {
		s.logger.Error("readiness probe failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
