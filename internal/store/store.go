// ABOUTME: Store interfaces and data types for todochat persistence
// ABOUTME: Defines Todo, Conversation, Message structs and the store interfaces

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
// or is not visible to the requesting user.
var ErrNotFound = errors.New("not found")

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Todo represents a task owned by a user.
type Todo struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Conversation represents a chat conversation owned by a user.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// MessageCount is populated by ListConversations only.
	MessageCount int `json:"message_count,omitempty"`
}

// ToolCall records a single tool invocation requested by the generation
// backend. Arguments is the raw JSON argument object as the model produced it.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult records the outcome of executing a ToolCall. Content holds the
// success payload, or an {"error": ...} descriptor when OK is false.
type ToolResult struct {
	ToolCallID string          `json:"tool_call_id"`
	OK         bool            `json:"ok"`
	Content    json.RawMessage `json:"content"`
}

// Message is a single turn within a conversation. Messages are immutable
// once persisted; ordering within a conversation is insertion order.
type Message struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversation_id"`
	Role           string       `json:"role"`
	Content        string       `json:"content"`
	ToolCalls      []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults    []ToolResult `json:"tool_results,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// TodoPage is one page of a user's todos plus pagination metadata.
type TodoPage struct {
	Todos  []*Todo `json:"todos"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// TodoFilter narrows ListTodos results.
type TodoFilter struct {
	Limit     int
	Offset    int
	Completed *bool // nil means both
}

// TodoStore defines todo persistence. All operations are scoped by user:
// a todo that exists but belongs to someone else behaves as absent.
type TodoStore interface {
	CreateTodo(ctx context.Context, todo *Todo) error
	GetTodo(ctx context.Context, userID, id string) (*Todo, error)
	ListTodos(ctx context.Context, userID string, filter TodoFilter) (*TodoPage, error)
	UpdateTodo(ctx context.Context, todo *Todo) error
	DeleteTodo(ctx context.Context, userID, id string) error
}

// ConversationStore defines conversation and message persistence.
type ConversationStore interface {
	CreateConversation(ctx context.Context, conv *Conversation) error
	GetConversation(ctx context.Context, userID, id string) (*Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*Conversation, error)
	DeleteConversation(ctx context.Context, userID, id string) error
	TouchConversation(ctx context.Context, id string, at time.Time) error

	SaveMessage(ctx context.Context, msg *Message) error
	// GetRecentMessages returns the most recent limit messages in
	// insertion order (oldest of the window first).
	GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]*Message, error)

	// Close releases any resources held by the store
	Close() error
}

// Store is the full persistence surface implemented by SQLiteStore.
type Store interface {
	TodoStore
	ConversationStore
}
