// ABOUTME: HTTP API handlers for chat, conversations, and todos.
// ABOUTME: Normalizes pipeline errors onto the JSON error taxonomy.

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tansell/todochat/internal/chat"
	"github.com/tansell/todochat/internal/store"
)

// ChatRequest is the JSON request body for POST /api/{user_id}/chat.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the JSON response for POST /api/{user_id}/chat.
type ChatResponse struct {
	ConversationID    string             `json:"conversation_id"`
	MessageID         string             `json:"message_id"`
	Response          string             `json:"response"`
	ConversationTitle string             `json:"conversation_title"`
	Timestamp         string             `json:"timestamp"`
	Fallback          bool               `json:"fallback"`
	ToolCalls         []store.ToolCall   `json:"tool_calls,omitempty"`
	ToolResults       []store.ToolResult `json:"tool_results,omitempty"`
}

// ConversationSummary is one entry in GET /api/{user_id}/conversations.
type ConversationSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	MessageCount int    `json:"message_count"`
}

// ListConversationsResponse is the JSON response for the conversation list.
type ListConversationsResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
}

// ConversationDetail is the conversation envelope in the detail response.
type ConversationDetail struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ConversationDetailResponse is the JSON response for a single conversation:
// the conversation object plus its message history.
type ConversationDetailResponse struct {
	Conversation ConversationDetail `json:"conversation"`
	Messages     []*store.Message   `json:"messages"`
}

// DeleteConversationResponse confirms a successful delete.
type DeleteConversationResponse struct {
	Message string `json:"message"`
}

// conversationDetailLimit bounds how much history a detail view returns.
const conversationDetailLimit = 500

// handleChat handles POST /api/{user_id}/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := s.orchestrator.Handle(r.Context(), &chat.Request{
		UserID:         userID,
		ConversationID: req.ConversationID,
		Message:        req.Message,
	})
	if err != nil {
		s.writeChatError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, &ChatResponse{
		ConversationID:    resp.ConversationID,
		MessageID:         resp.MessageID,
		Response:          resp.Text,
		ConversationTitle: resp.ConversationTitle,
		Timestamp:         resp.CreatedAt.Format(time.RFC3339),
		Fallback:          resp.Fallback,
		ToolCalls:         resp.ToolCalls,
		ToolResults:       resp.ToolResults,
	})
}

// writeChatError maps orchestrator errors onto HTTP statuses.
func (s *Server) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrMessageTooLong):
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrRateLimited):
		s.sendJSONError(w, http.StatusTooManyRequests, "too many requests, slow down")
	case errors.Is(err, store.ErrNotFound):
		s.sendJSONError(w, http.StatusNotFound, "conversation not found")
	default:
		s.logger.Error("chat turn failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleListConversations handles GET /api/{user_id}/conversations.
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	convs, err := s.store.ListConversations(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to list conversations", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := ListConversationsResponse{
		Conversations: make([]ConversationSummary, len(convs)),
	}
	for i, c := range convs {
		response.Conversations[i] = ConversationSummary{
			ID:           c.ID,
			Title:        c.Title,
			CreatedAt:    c.CreatedAt.Format(time.RFC3339),
			UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
			MessageCount: c.MessageCount,
		}
	}

	s.sendJSON(w, http.StatusOK, response)
}

// handleConversation handles GET and DELETE /api/{user_id}/conversations/{id}.
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request, userID, conversationID string) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetConversation(w, r, userID, conversationID)
	case http.MethodDelete:
		s.handleDeleteConversation(w, r, userID, conversationID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request, userID, conversationID string) {
	conv, err := s.store.GetConversation(r.Context(), userID, conversationID)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get conversation", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	messages, err := s.store.GetRecentMessages(r.Context(), conv.ID, conversationDetailLimit)
	if err != nil {
		s.logger.Error("failed to load messages", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, &ConversationDetailResponse{
		Conversation: ConversationDetail{
			ID:        conv.ID,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt.Format(time.RFC3339),
			UpdatedAt: conv.UpdatedAt.Format(time.RFC3339),
		},
		Messages: messages,
	})
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request, userID, conversationID string) {
	err := s.store.DeleteConversation(r.Context(), userID, conversationID)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete conversation", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, &DeleteConversationResponse{Message: "conversation deleted"})
}

// handleListTodos handles GET /api/{user_id}/todos.
// Supports ?limit=N&offset=N&completed=true|false.
func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var filter store.TodoFilter
	q := r.URL.Query()

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			s.sendJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			s.sendJSONError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}
	if completedStr := q.Get("completed"); completedStr != "" {
		completed, err := strconv.ParseBool(completedStr)
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "completed must be true or false")
			return
		}
		filter.Completed = &completed
	}

	page, err := s.store.ListTodos(r.Context(), userID, filter)
	if err != nil {
		s.logger.Error("failed to list todos", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, page)
}

// sendJSON writes a JSON response with the given status.
func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
