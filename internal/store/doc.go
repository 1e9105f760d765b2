// Package store provides persistent storage for todochat using SQLite.
//
// # Architecture
//
// The package exposes small, purpose-specific interfaces:
//
//   - TodoStore: todo CRUD, always scoped by owning user
//   - ConversationStore: conversations and their messages
//   - Store: the union, implemented by SQLiteStore
//
// SQLiteStore implements all interfaces in a single struct, allowing easy
// composition while maintaining clear interface boundaries.
//
// # Data Models
//
//   - Todo: task with title/description/completed, owned by one user
//   - Conversation: chat conversation owned by one user
//   - Message: immutable conversation turn with an optional tool-call trace
//   - ToolCall/ToolResult: the persisted tool trace attached to a message
//
// # Ownership
//
// Every read, update, and delete takes the owning user's id and treats a
// row belonging to a different user as absent (ErrNotFound). Cross-user
// access is therefore indistinguishable from a missing row.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Deleting a conversation cascades to its messages via a foreign key.
//
// # Error Handling
//
//   - ErrNotFound: entity does not exist or is not owned by the caller
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewMockStore() for unit tests and NewSQLiteStore(":memory:") for
// integration tests with real SQLite.
//
// # Migrations
//
// Schema creation and column migrations run automatically on store
// initialization and are idempotent.
package store
