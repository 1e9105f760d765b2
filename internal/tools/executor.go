// ABOUTME: Executor runs model-requested tool calls against the todo store.
// ABOUTME: The only code path allowed to mutate todos on the assistant's behalf.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tansell/todochat/internal/store"
)

// Limits on tool inputs, matching the HTTP-facing todo validation.
const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
)

// Executor executes tool calls scoped to a single authenticated user.
// Every handler receives the user id the orchestrator derived from the
// bearer token; a user_id field inside the model's arguments is never read.
type Executor struct {
	todos  store.TodoStore
	logger *slog.Logger
}

// NewExecutor creates an Executor backed by the given todo store.
func NewExecutor(todos store.TodoStore, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		todos:  todos,
		logger: logger.With("component", "tools"),
	}
}

// Execute runs one tool call and always returns a ToolResult: execution
// failures become a failed result carrying an error descriptor, so the
// generation backend can explain the failure conversationally.
func (e *Executor) Execute(ctx context.Context, userID string, call store.ToolCall) store.ToolResult {
	kind, ok := KindFromName(call.Name)
	if !ok {
		return failure(call.ID, fmt.Sprintf("unknown tool %q", call.Name))
	}

	payload, err := e.dispatch(ctx, kind, userID, call.Arguments)
	if err != nil {
		e.logger.Warn("tool execution failed",
			"tool", call.Name,
			"user_id", userID,
			"error", err)
		return failure(call.ID, err.Error())
	}

	return store.ToolResult{ToolCallID: call.ID, OK: true, Content: payload}
}

// dispatch is the exhaustive switch over the closed tool set.
func (e *Executor) dispatch(ctx context.Context, kind Kind, userID string, args json.RawMessage) (json.RawMessage, error) {
	switch kind {
	case KindListTodos:
		return e.listTodos(ctx, userID, args)
	case KindAddTodo:
		return e.addTodo(ctx, userID, args)
	case KindUpdateTodo:
		return e.updateTodo(ctx, userID, args)
	case KindDeleteTodo:
		return e.deleteTodo(ctx, userID, args)
	case KindUserContext:
		return e.userContext(ctx, userID)
	}
	return nil, fmt.Errorf("unhandled tool kind %d", kind)
}

func failure(callID, msg string) store.ToolResult {
	content, _ := json.Marshal(map[string]string{"error": msg})
	return store.ToolResult{ToolCallID: callID, OK: false, Content: content}
}

type listTodosInput struct {
	Limit     int   `json:"limit"`
	Offset    int   `json:"offset"`
	Completed *bool `json:"completed"`
}

func (e *Executor) listTodos(ctx context.Context, userID string, args json.RawMessage) (json.RawMessage, error) {
	var in listTodosInput
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	page, err := e.todos.ListTodos(ctx, userID, store.TodoFilter{
		Limit:     in.Limit,
		Offset:    in.Offset,
		Completed: in.Completed,
	})
	if err != nil {
		return nil, err
	}

	return json.Marshal(page)
}

type addTodoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (e *Executor) addTodo(ctx context.Context, userID string, args json.RawMessage) (json.RawMessage, error) {
	var in addTodoInput
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, errors.New("title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, fmt.Errorf("title exceeds %d characters", maxTitleLen)
	}
	if len(in.Description) > maxDescriptionLen {
		return nil, fmt.Errorf("description exceeds %d characters", maxDescriptionLen)
	}

	todo := &store.Todo{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
	}
	if err := e.todos.CreateTodo(ctx, todo); err != nil {
		return nil, err
	}

	return json.Marshal(todo)
}

type updateTodoInput struct {
	TodoID      string  `json:"todo_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (e *Executor) updateTodo(ctx context.Context, userID string, args json.RawMessage) (json.RawMessage, error) {
	var in updateTodoInput
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.TodoID == "" {
		return nil, errors.New("todo_id is required")
	}

	// Fetch scoped to the authenticated user; a foreign todo_id reads as absent
	todo, err := e.todos.GetTodo(ctx, userID, in.TodoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.New("todo not found")
		}
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, errors.New("title cannot be empty")
		}
		if len(title) > maxTitleLen {
			return nil, fmt.Errorf("title exceeds %d characters", maxTitleLen)
		}
		todo.Title = title
	}
	if in.Description != nil {
		if len(*in.Description) > maxDescriptionLen {
			return nil, fmt.Errorf("description exceeds %d characters", maxDescriptionLen)
		}
		todo.Description = *in.Description
	}
	if in.Completed != nil {
		todo.Completed = *in.Completed
	}

	if err := e.todos.UpdateTodo(ctx, todo); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.New("todo not found")
		}
		return nil, err
	}

	return json.Marshal(todo)
}

type deleteTodoInput struct {
	TodoID string `json:"todo_id"`
}

func (e *Executor) deleteTodo(ctx context.Context, userID string, args json.RawMessage) (json.RawMessage, error) {
	var in deleteTodoInput
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.TodoID == "" {
		return nil, errors.New("todo_id is required")
	}

	if err := e.todos.DeleteTodo(ctx, userID, in.TodoID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.New("todo not found")
		}
		return nil, err
	}

	return json.Marshal(map[string]any{"deleted": true, "todo_id": in.TodoID})
}

// userContext summarizes recent activity so the model can personalize replies.
func (e *Executor) userContext(ctx context.Context, userID string) (json.RawMessage, error) {
	page, err := e.todos.ListTodos(ctx, userID, store.TodoFilter{Limit: 5})
	if err != nil {
		return nil, err
	}

	open := false
	openPage, err := e.todos.ListTodos(ctx, userID, store.TodoFilter{Limit: 1, Completed: &open})
	if err != nil {
		return nil, err
	}

	recent := make([]string, 0, len(page.Todos))
	for _, t := range page.Todos {
		recent = append(recent, t.Title)
	}

	return json.Marshal(map[string]any{
		"total_todos":   page.Total,
		"open_todos":    openPage.Total,
		"recent_titles": recent,
	})
}

// decodeArgs parses model-authored JSON arguments. Empty arguments decode as
// the zero value since models frequently omit the object entirely.
func decodeArgs(args json.RawMessage, dst any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
