// ABOUTME: Tests for the tool executor.
// ABOUTME: Covers CRUD tools, validation failures, scoping, and unknown tools.

package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tansell/todochat/internal/store"
)

func newTestExecutor(t *testing.T) (*Executor, *store.MockStore) {
	t.Helper()
	s := store.NewMockStore()
	return NewExecutor(s, nil), s
}

func call(name, args string) store.ToolCall {
	return store.ToolCall{ID: "call-" + name, Name: name, Arguments: json.RawMessage(args)}
}

func TestAddTodo(t *testing.T) {
	e, _ := newTestExecutor(t)

	res := e.Execute(context.Background(), "user-1", call(NameAddTodo, `{"title":"buy milk","description":"2L"}`))
	require.True(t, res.OK, "result: %s", res.Content)

	var todo store.Todo
	require.NoError(t, json.Unmarshal(res.Content, &todo))
	assert.Equal(t, "buy milk", todo.Title)
	assert.Equal(t, "user-1", todo.UserID)
	assert.NotEmpty(t, todo.ID)
}

func TestAddTodo_Validation(t *testing.T) {
	e, _ := newTestExecutor(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args string
	}{
		{"empty title", `{"title":""}`},
		{"whitespace title", `{"title":"   "}`},
		{"over-length title", `{"title":"` + strings.Repeat("x", 201) + `"}`},
		{"over-length description", `{"title":"ok","description":"` + strings.Repeat("x", 1001) + `"}`},
		{"malformed json", `{"title":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Execute(ctx, "user-1", call(NameAddTodo, tt.args))
			assert.False(t, res.OK)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(res.Content, &payload))
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestListTodos_EmptyIsSuccess(t *testing.T) {
	e, _ := newTestExecutor(t)

	res := e.Execute(context.Background(), "user-1", call(NameListTodos, `{}`))
	require.True(t, res.OK)

	var page store.TodoPage
	require.NoError(t, json.Unmarshal(res.Content, &page))
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Todos)
}

func TestListTodos_Idempotent(t *testing.T) {
	e, _ := newTestExecutor(t)
	ctx := context.Background()

	e.Execute(ctx, "user-1", call(NameAddTodo, `{"title":"a"}`))
	e.Execute(ctx, "user-1", call(NameAddTodo, `{"title":"b"}`))

	first := e.Execute(ctx, "user-1", call(NameListTodos, `{"limit":10}`))
	second := e.Execute(ctx, "user-1", call(NameListTodos, `{"limit":10}`))
	require.True(t, first.OK)
	require.True(t, second.OK)
	assert.JSONEq(t, string(first.Content), string(second.Content))
}

func TestUpdateTodo(t *testing.T) {
	e, s := newTestExecutor(t)
	ctx := context.Background()

	todo := &store.Todo{UserID: "user-1", Title: "original"}
	require.NoError(t, s.CreateTodo(ctx, todo))

	res := e.Execute(ctx, "user-1", call(NameUpdateTodo, `{"todo_id":"`+todo.ID+`","completed":true,"title":"renamed"}`))
	require.True(t, res.OK, "result: %s", res.Content)

	got, err := s.GetTodo(ctx, "user-1", todo.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "renamed", got.Title)
}

func TestUpdateTodo_NotFound(t *testing.T) {
	e, _ := newTestExecutor(t)

	res := e.Execute(context.Background(), "user-1", call(NameUpdateTodo, `{"todo_id":"missing","completed":true}`))
	assert.False(t, res.OK)
	assert.Contains(t, string(res.Content), "not found")
}

func TestDeleteTodo(t *testing.T) {
	e, s := newTestExecutor(t)
	ctx := context.Background()

	todo := &store.Todo{UserID: "user-1", Title: "doomed"}
	require.NoError(t, s.CreateTodo(ctx, todo))

	res := e.Execute(ctx, "user-1", call(NameDeleteTodo, `{"todo_id":"`+todo.ID+`"}`))
	require.True(t, res.OK)

	_, err := s.GetTodo(ctx, "user-1", todo.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// A user_id in the model's arguments must never widen the scope: execution
// always runs as the authenticated user.
func TestExecute_IgnoresArgumentUserID(t *testing.T) {
	e, s := newTestExecutor(t)
	ctx := context.Background()

	victim := &store.Todo{UserID: "victim", Title: "victim's todo"}
	require.NoError(t, s.CreateTodo(ctx, victim))

	// Attacker-crafted arguments naming the victim
	res := e.Execute(ctx, "attacker", call(NameDeleteTodo, `{"todo_id":"`+victim.ID+`","user_id":"victim"}`))
	assert.False(t, res.OK)

	// The victim's todo is untouched
	_, err := s.GetTodo(ctx, "victim", victim.ID)
	assert.NoError(t, err)

	// Creation is likewise pinned to the authenticated user
	res = e.Execute(ctx, "attacker", call(NameAddTodo, `{"title":"planted","user_id":"victim"}`))
	require.True(t, res.OK)
	var created store.Todo
	require.NoError(t, json.Unmarshal(res.Content, &created))
	assert.Equal(t, "attacker", created.UserID)
}

func TestGetUserContext(t *testing.T) {
	e, _ := newTestExecutor(t)
	ctx := context.Background()

	e.Execute(ctx, "user-1", call(NameAddTodo, `{"title":"walk dog"}`))
	e.Execute(ctx, "user-1", call(NameAddTodo, `{"title":"water plants"}`))

	res := e.Execute(ctx, "user-1", call(NameUserContext, `{}`))
	require.True(t, res.OK)

	var summary struct {
		TotalTodos   int      `json:"total_todos"`
		OpenTodos    int      `json:"open_todos"`
		RecentTitles []string `json:"recent_titles"`
	}
	require.NoError(t, json.Unmarshal(res.Content, &summary))
	assert.Equal(t, 2, summary.TotalTodos)
	assert.Equal(t, 2, summary.OpenTodos)
	assert.Len(t, summary.RecentTitles, 2)
}

func TestExecute_UnknownTool(t *testing.T) {
	e, _ := newTestExecutor(t)

	res := e.Execute(context.Background(), "user-1", call("drop_tables", `{}`))
	assert.False(t, res.OK)
	assert.Contains(t, string(res.Content), "unknown tool")
}

func TestKindRoundTrip(t *testing.T) {
	for _, def := range Definitions() {
		kind, ok := KindFromName(def.Name)
		require.True(t, ok, def.Name)
		assert.Equal(t, def.Kind, kind)
		assert.Equal(t, def.Name, kind.Name())
	}

	_, ok := KindFromName("bogus")
	assert.False(t, ok)
}
