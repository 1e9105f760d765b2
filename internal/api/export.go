// ABOUTME: HTML transcript export for conversations.
// ABOUTME: Assistant markdown is rendered with goldmark, user text is escaped.

package api

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/tansell/todochat/internal/store"
)

// handleExportConversation handles GET /api/{user_id}/conversations/{id}/export.
// It renders the transcript as a standalone HTML page.
func (s *Server) handleExportConversation(w http.ResponseWriter, r *http.Request, userID, conversationID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

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

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTranscript(conv, messages))
}

// renderTranscript builds the standalone HTML transcript page.
func renderTranscript(conv *store.Conversation, messages []*store.Message) []byte {
	var buf bytes.Buffer

	title := html.EscapeString(conv.Title)
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	buf.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", title)
	buf.WriteString("<style>\n")
	buf.WriteString("body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }\n")
	buf.WriteString(".message { margin: 1rem 0; padding: 0.75rem 1rem; border-radius: 0.5rem; }\n")
	buf.WriteString(".user { background: #eef2ff; }\n")
	buf.WriteString(".assistant { background: #f5f5f4; }\n")
	buf.WriteString(".role { font-size: 0.75rem; text-transform: uppercase; color: #666; }\n")
	buf.WriteString("</style>\n</head>\n<body>\n")

	fmt.Fprintf(&buf, "<h1>%s</h1>\n", title)
	fmt.Fprintf(&buf, "<p class=\"role\">exported %s</p>\n", time.Now().UTC().Format(time.RFC3339))

	for _, msg := range messages {
		fmt.Fprintf(&buf, "<div class=\"message %s\">\n", html.EscapeString(msg.Role))
		fmt.Fprintf(&buf, "<div class=\"role\">%s</div>\n", html.EscapeString(msg.Role))
		buf.Write(renderMessageBody(msg))
		buf.WriteString("</div>\n")
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}

// renderMessageBody renders one message. Assistant replies are markdown;
// everything else is escaped verbatim.
func renderMessageBody(msg *store.Message) []byte {
	if msg.Role == store.RoleAssistant {
		var htmlBuf bytes.Buffer
		if err := goldmark.Convert([]byte(msg.Content), &htmlBuf); err != nil {
			return []byte("<p>" + html.EscapeString(msg.Content) + "</p>\n")
		}
		return htmlBuf.Bytes()
	}
	return []byte("<p>" + html.EscapeString(msg.Content) + "</p>\n")
}
