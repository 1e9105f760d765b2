// Package tools implements the fixed toolset the assistant may invoke.
//
// # Overview
//
// The generation backend can request tool calls; this package is the only
// code path permitted to act on them. Each tool is a narrow, validated
// operation against the todo store.
//
// # Toolset
//
//   - list_todos: page through the user's todos (empty list is success)
//   - add_todo: create a todo (title required, length-bounded)
//   - update_todo: partial update of an owned todo
//   - delete_todo: delete an owned todo
//   - get_user_context: recent-activity summary
//
// # Closed dispatch
//
// Tool identity is the Kind enum, not a free-form string. KindFromName gates
// the allow-list at the edge and Executor.dispatch switches exhaustively
// over Kind, so an unsupported name can only ever produce a failed
// ToolResult, never reach a handler.
//
// # Scoping invariant
//
// Every execution is scoped to the user id the orchestrator derived from
// the authenticated token. Tool argument objects never carry an effective
// user_id: a model-authored user_id field is ignored by construction
// because no input struct declares it.
//
// # Failure model
//
// Execute never returns an error. Validation and store failures become a
// ToolResult with OK=false and an {"error": ...} payload, which the
// orchestrator feeds back to the generation backend so the failure is
// explained to the user in natural language.
package tools
