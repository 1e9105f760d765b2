// Package llm abstracts the generation backend behind a Provider interface.
//
// # Overview
//
// The chat orchestrator is provider-agnostic: it hands a Provider the
// system prompt, the conversation window, and the tool definitions, and
// receives back either assistant text or requested tool calls.
//
// Implementations:
//
//   - OpenAIProvider: non-streaming chat completions with function tools
//     against any OpenAI-compatible endpoint
//   - Stub: a deterministic offline responder that pattern-matches simple
//     todo intents, used as the fallback when the real backend is down
//
// # Failure contract
//
// Providers wrap connectivity and upstream failures in ErrUnavailable so
// the orchestrator can distinguish "backend is down, fall back" from
// programming errors.
package llm
