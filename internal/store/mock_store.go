// ABOUTME: In-memory mock implementation of the Store interface for testing
// ABOUTME: Thread-safe, preserves message insertion order, no persistence

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ensure MockStore implements the full store surface.
var _ Store = (*MockStore)(nil)

// MockStore is an in-memory Store implementation for unit tests.
type MockStore struct {
	mu            sync.RWMutex
	todos         map[string]*Todo
	conversations map[string]*Conversation
	// messages preserves insertion order per conversation
	messages map[string][]*Message
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		todos:         make(map[string]*Todo),
		conversations: make(map[string]*Conversation),
		messages:      make(map[string][]*Message),
	}
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error { return nil }

// Todos

func (m *MockStore) CreateTodo(_ context.Context, todo *Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = now
	}
	todo.UpdatedAt = now

	cp := *todo
	m.todos[todo.ID] = &cp
	return nil
}

func (m *MockStore) GetTodo(_ context.Context, userID, id string) (*Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	todo, ok := m.todos[id]
	if !ok || todo.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *todo
	return &cp, nil
}

func (m *MockStore) ListTodos(_ context.Context, userID string, filter TodoFilter) (*TodoPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var matched []*Todo
	for _, t := range m.todos {
		if t.UserID != userID {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		cp := *t
		matched = append(matched, &cp)
	}

	// Newest first, id as tiebreaker for deterministic order
	sortTodos(matched)

	page := &TodoPage{
		Todos:  []*Todo{},
		Total:  len(matched),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for i := filter.Offset; i < len(matched) && len(page.Todos) < filter.Limit; i++ {
		page.Todos = append(page.Todos, matched[i])
	}
	return page, nil
}

func (m *MockStore) UpdateTodo(_ context.Context, todo *Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.todos[todo.ID]
	if !ok || existing.UserID != todo.UserID {
		return ErrNotFound
	}
	todo.CreatedAt = existing.CreatedAt
	todo.UpdatedAt = time.Now().UTC()
	cp := *todo
	m.todos[todo.ID] = &cp
	return nil
}

func (m *MockStore) DeleteTodo(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	todo, ok := m.todos[id]
	if !ok || todo.UserID != userID {
		return ErrNotFound
	}
	delete(m.todos, id)
	return nil
}

// Conversations

func (m *MockStore) CreateConversation(_ context.Context, conv *Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
	}

	cp := *conv
	m.conversations[conv.ID] = &cp
	return nil
}

func (m *MockStore) GetConversation(_ context.Context, userID, id string) (*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conv, ok := m.conversations[id]
	if !ok || conv.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *conv
	return &cp, nil
}

func (m *MockStore) ListConversations(_ context.Context, userID string) ([]*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var convs []*Conversation
	for _, c := range m.conversations {
		if c.UserID != userID {
			continue
		}
		cp := *c
		cp.MessageCount = len(m.messages[c.ID])
		convs = append(convs, &cp)
	}
	sortConversations(convs)
	return convs, nil
}

func (m *MockStore) DeleteConversation(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.conversations[id]
	if !ok || conv.UserID != userID {
		return ErrNotFound
	}
	delete(m.conversations, id)
	delete(m.messages, id)
	return nil
}

func (m *MockStore) TouchConversation(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conv, ok := m.conversations[id]; ok {
		conv.UpdatedAt = at.UTC()
	}
	return nil
}

// Messages

func (m *MockStore) SaveMessage(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	cp := *msg
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], &cp)
	return nil
}

func (m *MockStore) GetRecentMessages(_ context.Context, conversationID string, limit int) ([]*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	all := m.messages[conversationID]
	start := 0
	if len(all) > limit {
		start = len(all) - limit
	}

	out := make([]*Message, 0, len(all)-start)
	for _, msg := range all[start:] {
		cp := *msg
		out = append(out, &cp)
	}
	return out, nil
}

// sortTodos orders newest first with id as tiebreaker.
func sortTodos(todos []*Todo) {
	sort.Slice(todos, func(i, j int) bool {
		if !todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].CreatedAt.After(todos[j].CreatedAt)
		}
		return todos[i].ID < todos[j].ID
	})
}

// sortConversations orders most recently updated first.
func sortConversations(convs []*Conversation) {
	sort.Slice(convs, func(i, j int) bool {
		if !convs[i].UpdatedAt.Equal(convs[j].UpdatedAt) {
			return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
		}
		return convs[i].ID < convs[j].ID
	})
}
