// ABOUTME: Tests for SQLite store implementation
// ABOUTME: Covers todo CRUD, conversation ownership, cascade delete, and message ordering

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	return s
}

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestTodoCRUD(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	todo := &Todo{
		UserID:      "user-1",
		Title:       "buy milk",
		Description: "two liters",
	}
	if err := store.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}
	if todo.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := store.GetTodo(ctx, "user-1", todo.ID)
	if err != nil {
		t.Fatalf("GetTodo failed: %v", err)
	}
	if got.Title != "buy milk" {
		t.Errorf("Title mismatch: got %q", got.Title)
	}
	if got.Completed {
		t.Error("new todo should not be completed")
	}

	got.Completed = true
	got.Title = "buy oat milk"
	if err := store.UpdateTodo(ctx, got); err != nil {
		t.Fatalf("UpdateTodo failed: %v", err)
	}

	got, err = store.GetTodo(ctx, "user-1", todo.ID)
	if err != nil {
		t.Fatalf("GetTodo after update failed: %v", err)
	}
	if !got.Completed || got.Title != "buy oat milk" {
		t.Errorf("update not applied: %+v", got)
	}

	if err := store.DeleteTodo(ctx, "user-1", todo.ID); err != nil {
		t.Fatalf("DeleteTodo failed: %v", err)
	}
	if _, err := store.GetTodo(ctx, "user-1", todo.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTodoOwnership(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	todo := &Todo{UserID: "alice", Title: "private"}
	if err := store.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	// Another user sees the todo as absent in every operation
	if _, err := store.GetTodo(ctx, "bob", todo.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTodo cross-user: expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateTodo(ctx, &Todo{ID: todo.ID, UserID: "bob", Title: "hijacked"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTodo cross-user: expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteTodo(ctx, "bob", todo.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTodo cross-user: expected ErrNotFound, got %v", err)
	}

	// The owner's copy is untouched
	got, err := store.GetTodo(ctx, "alice", todo.ID)
	if err != nil {
		t.Fatalf("GetTodo failed: %v", err)
	}
	if got.Title != "private" {
		t.Errorf("todo was modified by cross-user access: %q", got.Title)
	}
}

func TestListTodos_Pagination(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		todo := &Todo{
			UserID:    "user-1",
			Title:     fmt.Sprintf("task %d", i),
			Completed: i%2 == 0,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if err := store.CreateTodo(ctx, todo); err != nil {
			t.Fatalf("CreateTodo %d failed: %v", i, err)
		}
	}

	page, err := store.ListTodos(ctx, "user-1", TodoFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if page.Total != 5 {
		t.Errorf("Total: got %d, want 5", page.Total)
	}
	if len(page.Todos) != 2 {
		t.Fatalf("page size: got %d, want 2", len(page.Todos))
	}
	// Newest first
	if page.Todos[0].Title != "task 4" {
		t.Errorf("first item: got %q, want \"task 4\"", page.Todos[0].Title)
	}

	page2, err := store.ListTodos(ctx, "user-1", TodoFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListTodos offset failed: %v", err)
	}
	if page2.Todos[0].ID == page.Todos[0].ID {
		t.Error("offset page repeats first page")
	}

	completed := true
	filtered, err := store.ListTodos(ctx, "user-1", TodoFilter{Completed: &completed})
	if err != nil {
		t.Fatalf("ListTodos filtered failed: %v", err)
	}
	if filtered.Total != 3 {
		t.Errorf("completed total: got %d, want 3", filtered.Total)
	}
	for _, todo := range filtered.Todos {
		if !todo.Completed {
			t.Errorf("filter leaked incomplete todo %q", todo.Title)
		}
	}
}

func TestListTodos_EmptyIsSuccess(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	page, err := store.ListTodos(context.Background(), "nobody", TodoFilter{})
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if page.Total != 0 || len(page.Todos) != 0 {
		t.Errorf("expected empty page, got %+v", page)
	}
}

func TestConversationCRUD(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	conv := &Conversation{UserID: "user-1", Title: "groceries"}
	if err := store.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	got, err := store.GetConversation(ctx, "user-1", conv.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if got.Title != "groceries" {
		t.Errorf("Title mismatch: got %q", got.Title)
	}

	if _, err := store.GetConversation(ctx, "mallory", conv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user get: expected ErrNotFound, got %v", err)
	}

	if _, err := store.GetConversation(ctx, "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing conversation: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteConversation_CascadesToMessages(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	conv := &Conversation{UserID: "user-1", Title: "t"}
	if err := store.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		msg := &Message{ConversationID: conv.ID, Role: RoleUser, Content: fmt.Sprintf("m%d", i)}
		if err := store.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	// Wrong user cannot delete, messages stay
	if err := store.DeleteConversation(ctx, "mallory", conv.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user delete: expected ErrNotFound, got %v", err)
	}
	msgs, err := store.GetRecentMessages(ctx, conv.ID, 10)
	if err != nil {
		t.Fatalf("GetRecentMessages failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("messages changed by rejected delete: %d", len(msgs))
	}

	if err := store.DeleteConversation(ctx, "user-1", conv.ID); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}
	msgs, err = store.GetRecentMessages(ctx, conv.ID, 10)
	if err != nil {
		t.Fatalf("GetRecentMessages after delete failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected cascade delete of messages, %d remain", len(msgs))
	}
}

func TestListConversations_MessageCountAndOrder(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	older := &Conversation{UserID: "user-1", Title: "older", UpdatedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &Conversation{UserID: "user-1", Title: "newer", UpdatedAt: time.Now().UTC()}
	for _, c := range []*Conversation{older, newer} {
		c.CreatedAt = c.UpdatedAt
		if err := store.CreateConversation(ctx, c); err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := store.SaveMessage(ctx, &Message{ConversationID: newer.ID, Role: RoleUser, Content: "hi"}); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	convs, err := store.ListConversations(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	if convs[0].Title != "newer" {
		t.Errorf("order: first is %q, want \"newer\"", convs[0].Title)
	}
	if convs[0].MessageCount != 2 {
		t.Errorf("MessageCount: got %d, want 2", convs[0].MessageCount)
	}
	if convs[1].MessageCount != 0 {
		t.Errorf("MessageCount: got %d, want 0", convs[1].MessageCount)
	}
}

func TestGetRecentMessages_WindowAndOrder(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	conv := &Conversation{UserID: "user-1", Title: "t"}
	if err := store.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		msg := &Message{ConversationID: conv.ID, Role: RoleUser, Content: fmt.Sprintf("m%d", i)}
		if err := store.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage %d failed: %v", i, err)
		}
	}

	msgs, err := store.GetRecentMessages(ctx, conv.ID, 4)
	if err != nil {
		t.Fatalf("GetRecentMessages failed: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("window size: got %d, want 4", len(msgs))
	}
	// Window is the newest 4, returned oldest first
	for i, want := range []string{"m6", "m7", "m8", "m9"} {
		if msgs[i].Content != want {
			t.Errorf("msgs[%d]: got %q, want %q", i, msgs[i].Content, want)
		}
	}
}

func TestSaveMessage_ToolTraceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	conv := &Conversation{UserID: "user-1", Title: "t"}
	if err := store.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	msg := &Message{
		ConversationID: conv.ID,
		Role:           RoleAssistant,
		Content:        "added it",
		ToolCalls: []ToolCall{
			{ID: "call-1", Name: "add_todo", Arguments: []byte(`{"title":"buy milk"}`)},
		},
		ToolResults: []ToolResult{
			{ToolCallID: "call-1", OK: true, Content: []byte(`{"id":"todo-1"}`)},
		},
	}
	if err := store.SaveMessage(ctx, msg); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	msgs, err := store.GetRecentMessages(ctx, conv.ID, 10)
	if err != nil {
		t.Fatalf("GetRecentMessages failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	got := msgs[0]
	if len(got.ToolCalls) != 1 || got.ToolCalls[0].Name != "add_todo" {
		t.Errorf("tool calls not round-tripped: %+v", got.ToolCalls)
	}
	if len(got.ToolResults) != 1 || !got.ToolResults[0].OK || got.ToolResults[0].ToolCallID != "call-1" {
		t.Errorf("tool results not round-tripped: %+v", got.ToolResults)
	}
}
