// ABOUTME: Deterministic stub responder used when the generation backend is down.
// ABOUTME: Pattern-matches simple todo intents so chat keeps working offline.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tansell/todochat/internal/store"
	"github.com/tansell/todochat/internal/tools"
)

// Stub is a Provider that never fails. It recognizes a handful of todo
// intents by pattern matching and answers everything else with a canned
// hint, so the user always receives a response when the real backend is
// unavailable.
type Stub struct{}

// NewStub creates the stub responder.
func NewStub() *Stub { return &Stub{} }

// Name implements Provider.
func (s *Stub) Name() string { return "stub" }

// Complete implements Provider. The first round maps the user's message to
// at most one tool call; the follow-up round (tool results present) renders
// the results as plain text.
func (s *Stub) Complete(_ context.Context, req *Request) (*Completion, error) {
	if len(req.Turns) == 0 {
		return &Completion{Text: "How can I help with your todos?"}, nil
	}

	last := req.Turns[len(req.Turns)-1]
	if len(last.ToolResults) > 0 {
		return &Completion{Text: s.describeResults(req.Turns, last.ToolResults)}, nil
	}

	text := lastUserText(req.Turns)
	if title, ok := parseAddIntent(text); ok {
		args, _ := json.Marshal(map[string]string{"title": title})
		return &Completion{ToolCalls: []store.ToolCall{{
			ID:        uuid.New().String(),
			Name:      tools.NameAddTodo,
			Arguments: args,
		}}}, nil
	}
	if isListIntent(text) {
		return &Completion{ToolCalls: []store.ToolCall{{
			ID:        uuid.New().String(),
			Name:      tools.NameListTodos,
			Arguments: json.RawMessage(`{}`),
		}}}, nil
	}

	return &Completion{
		Text: "I couldn't reach the assistant just now, but I can still manage your list. " +
			"Try \"add buy milk\" or \"show my todos\".",
	}, nil
}

// lastUserText returns the content of the most recent user turn.
func lastUserText(turns []Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == store.RoleUser {
			return turns[i].Content
		}
	}
	return ""
}

// addPrefixes are intent markers for creating a todo. Matching is
// case-insensitive; the title keeps the user's original casing.
var addPrefixes = []string{
	"add ",
	"create ",
	"remind me to ",
	"i need to ",
	"new todo ",
	"new task ",
}

// addFillers are lead-in words commonly left between the intent marker and
// the actual title, e.g. "add a task to buy milk".
var addFillers = []string{
	"a task to ",
	"a todo to ",
	"a task for ",
	"a task ",
	"a todo ",
	"task to ",
	"todo to ",
	"task ",
	"todo ",
	"to ",
}

// parseAddIntent extracts a todo title from an "add ..." style message.
func parseAddIntent(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	for _, prefix := range addPrefixes {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := trimmed[len(prefix):]
		restLower := lower[len(prefix):]
		for _, filler := range addFillers {
			if strings.HasPrefix(restLower, filler) {
				rest = rest[len(filler):]
				break
			}
		}
		title := strings.Trim(strings.TrimSpace(rest), ".!?\"'")
		if title == "" {
			return "", false
		}
		return title, true
	}
	return "", false
}

// isListIntent reports whether the message asks to see the todo list.
func isListIntent(text string) bool {
	lower := strings.ToLower(text)
	mentionsTodos := strings.Contains(lower, "todo") ||
		strings.Contains(lower, "task") ||
		strings.Contains(lower, "list")
	if !mentionsTodos {
		return false
	}
	for _, verb := range []string{"list", "show", "what", "see", "view", "how many"} {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

// describeResults renders tool results as user-facing text. Tool names are
// recovered from the most recent assistant turn that requested them.
func (s *Stub) describeResults(turns []Turn, results []store.ToolResult) string {
	names := map[string]string{}
	for i := len(turns) - 1; i >= 0; i-- {
		if len(turns[i].ToolCalls) > 0 {
			for _, tc := range turns[i].ToolCalls {
				names[tc.ID] = tc.Name
			}
			break
		}
	}

	var parts []string
	for _, res := range results {
		parts = append(parts, describeResult(names[res.ToolCallID], res))
	}
	if len(parts) == 0 {
		return "Done."
	}
	return strings.Join(parts, " ")
}

func describeResult(toolName string, res store.ToolResult) string {
	if !res.OK {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(res.Content, &payload)
		if payload.Error == "" {
			payload.Error = "something went wrong"
		}
		return fmt.Sprintf("I wasn't able to do that: %s.", payload.Error)
	}

	switch toolName {
	case tools.NameAddTodo:
		var todo store.Todo
		if err := json.Unmarshal(res.Content, &todo); err == nil && todo.Title != "" {
			return fmt.Sprintf("Added %q to your list.", todo.Title)
		}
		return "Added it to your list."
	case tools.NameListTodos:
		var page store.TodoPage
		if err := json.Unmarshal(res.Content, &page); err != nil {
			return "Here is your list."
		}
		if page.Total == 0 {
			return "You don't have any todos yet."
		}
		titles := make([]string, 0, len(page.Todos))
		for _, t := range page.Todos {
			marker := " "
			if t.Completed {
				marker = "x"
			}
			titles = append(titles, fmt.Sprintf("[%s] %s", marker, t.Title))
		}
		return fmt.Sprintf("You have %d todo(s): %s.", page.Total, strings.Join(titles, "; "))
	case tools.NameUpdateTodo:
		var todo store.Todo
		if err := json.Unmarshal(res.Content, &todo); err == nil && todo.Title != "" {
			return fmt.Sprintf("Updated %q.", todo.Title)
		}
		return "Updated it."
	case tools.NameDeleteTodo:
		return "Deleted it."
	case tools.NameUserContext:
		return "Here's a summary of your recent activity."
	}
	return "Done."
}
