// ABOUTME: Provider abstraction over generation backends (LLM APIs).
// ABOUTME: Defines the request/completion types shared by all implementations.

package llm

import (
	"context"
	"errors"

	"github.com/tansell/todochat/internal/store"
	"github.com/tansell/todochat/internal/tools"
)

// ErrUnavailable wraps transport, timeout, and upstream failures of a
// generation backend. The orchestrator treats it as a signal to fall back
// to the stub responder rather than failing the chat turn.
var ErrUnavailable = errors.New("generation backend unavailable")

// Turn is one provider-agnostic conversation turn. An assistant turn may
// carry the tool calls it requested; ToolResults holds the executor's
// answers fed back for the follow-up round.
type Turn struct {
	Role        string
	Content     string
	ToolCalls   []store.ToolCall
	ToolResults []store.ToolResult
}

// Request is everything a provider needs for one completion: the system
// prompt, the conversation so far, and the toolset the model may call.
type Request struct {
	System string
	Turns  []Turn
	Tools  []tools.Definition
}

// Completion is a provider's answer: assistant text, tool calls, or both.
// An empty ToolCalls slice means the turn is final.
type Completion struct {
	Text      string
	ToolCalls []store.ToolCall
}

// Provider generates one completion per call. Implementations must honor
// context cancellation and wrap connectivity failures in ErrUnavailable.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *Request) (*Completion, error)
}
