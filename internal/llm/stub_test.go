// ABOUTME: Tests for the stub responder's intent matching and result rendering.
// ABOUTME: The stub must always answer, never error.

package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tansell/todochat/internal/store"
	"github.com/tansell/todochat/internal/tools"
)

func userTurn(text string) Turn {
	return Turn{Role: store.RoleUser, Content: text}
}

func TestStub_AddIntent(t *testing.T) {
	stub := NewStub()

	tests := []struct {
		message string
		title   string
	}{
		{"add buy milk", "buy milk"},
		{"Add a task to buy milk", "buy milk"},
		{"add a todo to water the plants", "water the plants"},
		{"remind me to call mum", "call mum"},
		{"create task walk the dog!", "walk the dog"},
		{"I need to file taxes", "file taxes"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			c, err := stub.Complete(context.Background(), &Request{Turns: []Turn{userTurn(tt.message)}})
			require.NoError(t, err)
			require.Len(t, c.ToolCalls, 1)
			assert.Equal(t, tools.NameAddTodo, c.ToolCalls[0].Name)

			var args struct {
				Title string `json:"title"`
			}
			require.NoError(t, json.Unmarshal(c.ToolCalls[0].Arguments, &args))
			assert.Equal(t, tt.title, args.Title)
		})
	}
}

func TestStub_ListIntent(t *testing.T) {
	stub := NewStub()

	for _, message := range []string{
		"show me my todos",
		"list my tasks",
		"What's on my todo list?",
	} {
		t.Run(message, func(t *testing.T) {
			c, err := stub.Complete(context.Background(), &Request{Turns: []Turn{userTurn(message)}})
			require.NoError(t, err)
			require.Len(t, c.ToolCalls, 1)
			assert.Equal(t, tools.NameListTodos, c.ToolCalls[0].Name)
		})
	}
}

func TestStub_UnrecognizedIntent(t *testing.T) {
	stub := NewStub()

	c, err := stub.Complete(context.Background(), &Request{Turns: []Turn{userTurn("tell me a joke")}})
	require.NoError(t, err)
	assert.Empty(t, c.ToolCalls)
	assert.NotEmpty(t, c.Text)
}

func TestStub_DescribesAddResult(t *testing.T) {
	stub := NewStub()

	todoJSON, _ := json.Marshal(store.Todo{ID: "t1", Title: "buy milk"})
	turns := []Turn{
		userTurn("add buy milk"),
		{Role: store.RoleAssistant, ToolCalls: []store.ToolCall{{ID: "c1", Name: tools.NameAddTodo}}},
		{Role: store.RoleUser, ToolResults: []store.ToolResult{{ToolCallID: "c1", OK: true, Content: todoJSON}}},
	}

	c, err := stub.Complete(context.Background(), &Request{Turns: turns})
	require.NoError(t, err)
	assert.Empty(t, c.ToolCalls)
	assert.Contains(t, c.Text, "buy milk")
}

func TestStub_DescribesEmptyList(t *testing.T) {
	stub := NewStub()

	pageJSON, _ := json.Marshal(store.TodoPage{Todos: []*store.Todo{}, Total: 0})
	turns := []Turn{
		userTurn("show me my todos"),
		{Role: store.RoleAssistant, ToolCalls: []store.ToolCall{{ID: "c1", Name: tools.NameListTodos}}},
		{Role: store.RoleUser, ToolResults: []store.ToolResult{{ToolCallID: "c1", OK: true, Content: pageJSON}}},
	}

	c, err := stub.Complete(context.Background(), &Request{Turns: turns})
	require.NoError(t, err)
	assert.Contains(t, c.Text, "don't have any todos")
}

func TestStub_DescribesFailure(t *testing.T) {
	stub := NewStub()

	turns := []Turn{
		userTurn("add x"),
		{Role: store.RoleAssistant, ToolCalls: []store.ToolCall{{ID: "c1", Name: tools.NameAddTodo}}},
		{Role: store.RoleUser, ToolResults: []store.ToolResult{
			{ToolCallID: "c1", OK: false, Content: []byte(`{"error":"title is required"}`)},
		}},
	}

	c, err := stub.Complete(context.Background(), &Request{Turns: turns})
	require.NoError(t, err)
	assert.Contains(t, c.Text, "title is required")
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{Type: ProviderTypeStub})
	require.NoError(t, err)
	assert.Equal(t, "stub", p.Name())

	_, err = NewProvider(Config{Type: "bogus"})
	assert.Error(t, err)

	_, err = NewProvider(Config{Type: ProviderTypeOpenAI})
	assert.Error(t, err, "missing API key must be rejected")
}
