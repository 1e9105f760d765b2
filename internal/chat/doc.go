// Package chat orchestrates one conversational turn end to end.
//
// The Orchestrator owns the pipeline between the HTTP surface and the
// generation backend: it validates and rate-limits the inbound message,
// resolves or lazily creates the conversation, loads the recent history
// window, persists the user message, runs the completion/tool loop, and
// persists the assistant reply together with its tool-call trace.
//
// # Degradation
//
// A chat turn never fails because the generation backend is down. When the
// configured provider returns an error or times out, the orchestrator
// switches to the deterministic stub responder for the remainder of the
// turn and marks the response as a fallback.
package chat
