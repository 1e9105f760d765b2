// ABOUTME: Closed tool set exposed to the generation backend.
// ABOUTME: Defines the Kind enum and the JSON-schema definitions per tool.

package tools

// Kind identifies one of the fixed tools. The set is closed: dispatch is an
// exhaustive switch, and a name outside the set never reaches a handler.
type Kind int

const (
	KindListTodos Kind = iota
	KindAddTodo
	KindUpdateTodo
	KindDeleteTodo
	KindUserContext
)

// Tool names as they appear on the wire and in persisted tool traces.
const (
	NameListTodos   = "list_todos"
	NameAddTodo     = "add_todo"
	NameUpdateTodo  = "update_todo"
	NameDeleteTodo  = "delete_todo"
	NameUserContext = "get_user_context"
)

// Name returns the wire name for a Kind.
func (k Kind) Name() string {
	switch k {
	case KindListTodos:
		return NameListTodos
	case KindAddTodo:
		return NameAddTodo
	case KindUpdateTodo:
		return NameUpdateTodo
	case KindDeleteTodo:
		return NameDeleteTodo
	case KindUserContext:
		return NameUserContext
	}
	return "unknown"
}

// KindFromName maps a wire name to its Kind. The second return is false for
// names outside the allow-list.
func KindFromName(name string) (Kind, bool) {
	switch name {
	case NameListTodos:
		return KindListTodos, true
	case NameAddTodo:
		return KindAddTodo, true
	case NameUpdateTodo:
		return KindUpdateTodo, true
	case NameDeleteTodo:
		return KindDeleteTodo, true
	case NameUserContext:
		return KindUserContext, true
	}
	return 0, false
}

// Definition describes one tool for the generation backend: name,
// human-readable description, and a JSON Schema for its arguments.
type Definition struct {
	Kind        Kind
	Name        string
	Description string
	InputSchema string
}

// Definitions returns the fixed toolset advertised to the generation
// backend. The schemas deliberately omit user_id: scoping comes from the
// authenticated request, never from model-authored arguments.
func Definitions() []Definition {
	return []Definition{
		{
			Kind:        KindListTodos,
			Name:        NameListTodos,
			Description: "List the user's todos with pagination",
			InputSchema: `{"type":"object","properties":{"limit":{"type":"integer"},"offset":{"type":"integer"},"completed":{"type":"boolean"}}}`,
		},
		{
			Kind:        KindAddTodo,
			Name:        NameAddTodo,
			Description: "Create a new todo for the user",
			InputSchema: `{"type":"object","properties":{"title":{"type":"string","maxLength":200},"description":{"type":"string","maxLength":1000}},"required":["title"]}`,
		},
		{
			Kind:        KindUpdateTodo,
			Name:        NameUpdateTodo,
			Description: "Update fields of an existing todo",
			InputSchema: `{"type":"object","properties":{"todo_id":{"type":"string"},"title":{"type":"string","maxLength":200},"description":{"type":"string","maxLength":1000},"completed":{"type":"boolean"}},"required":["todo_id"]}`,
		},
		{
			Kind:        KindDeleteTodo,
			Name:        NameDeleteTodo,
			Description: "Delete a todo",
			InputSchema: `{"type":"object","properties":{"todo_id":{"type":"string"}},"required":["todo_id"]}`,
		},
		{
			Kind:        KindUserContext,
			Name:        NameUserContext,
			Description: "Summarize the user's recent todo activity",
			InputSchema: `{"type":"object","properties":{}}`,
		},
	}
}
