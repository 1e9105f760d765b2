// ABOUTME: Conversation orchestrator turning one user message into one assistant reply.
// ABOUTME: Record first, then act - messages are persisted before and after generation.

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tansell/todochat/internal/llm"
	"github.com/tansell/todochat/internal/ratelimit"
	"github.com/tansell/todochat/internal/store"
	"github.com/tansell/todochat/internal/tools"
)

// Orchestrator errors. The HTTP layer maps these onto status codes.
var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message exceeds maximum length")
	ErrRateLimited    = errors.New("too many requests")
)

const (
	defaultHistoryLimit      = 20
	defaultMaxMessageChars   = 10000
	defaultCompletionTimeout = 30 * time.Second
	defaultMaxToolRounds     = 5
	maxTitleChars            = 60
)

const systemPrompt = `You are a todo-list assistant. You help the user manage their tasks ` +
	`using the provided tools: list, add, update, and delete todos, and fetch a summary of ` +
	`recent activity. Use tools whenever the user asks about or changes their tasks, then ` +
	`confirm what you did in one or two friendly sentences. Never invent todos that the ` +
	`tools did not return.`

// Options tune the orchestrator. Zero values select the defaults above.
type Options struct {
	HistoryLimit      int
	MaxMessageChars   int
	CompletionTimeout time.Duration
	MaxToolRounds     int
}

func (o Options) withDefaults() Options {
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = defaultHistoryLimit
	}
	if o.MaxMessageChars <= 0 {
		o.MaxMessageChars = defaultMaxMessageChars
	}
	if o.CompletionTimeout <= 0 {
		o.CompletionTimeout = defaultCompletionTimeout
	}
	if o.MaxToolRounds <= 0 {
		o.MaxToolRounds = defaultMaxToolRounds
	}
	return o
}

// Orchestrator coordinates one chat turn: conversation resolution, history
// loading, generation, tool execution, and persistence of both messages.
type Orchestrator struct {
	store    store.ConversationStore
	executor *tools.Executor
	provider llm.Provider
	fallback llm.Provider
	limiter  *ratelimit.Limiter
	logger   *slog.Logger
	opts     Options
}

// New creates an Orchestrator. limiter may be nil to disable rate limiting
// (tests); provider failures always fall back to the stub responder.
func New(st store.ConversationStore, executor *tools.Executor, provider llm.Provider, limiter *ratelimit.Limiter, logger *slog.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:    st,
		executor: executor,
		provider: provider,
		fallback: llm.NewStub(),
		limiter:  limiter,
		logger:   logger.With("component", "chat"),
		opts:     opts.withDefaults(),
	}
}

// Request is one inbound chat turn. UserID is the authenticated identity,
// never a client-supplied field.
type Request struct {
	UserID         string
	ConversationID string
	Message        string
}

// Response is the finalized chat payload: the assistant's reply plus the
// tool-call trace for the turn.
type Response struct {
	ConversationID    string
	ConversationTitle string
	MessageID         string
	Text              string
	CreatedAt         time.Time
	Fallback          bool
	ToolCalls         []store.ToolCall
	ToolResults       []store.ToolResult
}

// Handle processes one user message and returns the assistant reply.
//
// Validation and rate limiting happen before any store access or backend
// call. The user message is persisted before generation so a record exists
// even if generation fails. Tool failures become failed ToolResults and are
// explained conversationally; only backend unavailability switches to the
// stub responder.
func (o *Orchestrator) Handle(ctx context.Context, req *Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > o.opts.MaxMessageChars {
		return nil, fmt.Errorf("%w (%d chars max)", ErrMessageTooLong, o.opts.MaxMessageChars)
	}

	if o.limiter != nil && !o.limiter.Allow(req.UserID) {
		return nil, ErrRateLimited
	}

	conv, err := o.resolveConversation(ctx, req.UserID, req.ConversationID, message)
	if err != nil {
		return nil, err
	}

	history, err := o.store.GetRecentMessages(ctx, conv.ID, o.opts.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	// Record first, then act
	userMsg := &store.Message{
		ConversationID: conv.ID,
		Role:           store.RoleUser,
		Content:        message,
	}
	if err := o.store.SaveMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("recording user message: %w", err)
	}

	turns := historyToTurns(history)
	turns = append(turns, llm.Turn{Role: store.RoleUser, Content: message})

	text, trace, usedFallback := o.generate(ctx, req.UserID, turns)

	assistantMsg := &store.Message{
		ConversationID: conv.ID,
		Role:           store.RoleAssistant,
		Content:        text,
		ToolCalls:      trace.calls,
		ToolResults:    trace.results,
	}
	if err := o.store.SaveMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("recording assistant message: %w", err)
	}
	if err := o.store.TouchConversation(ctx, conv.ID, assistantMsg.CreatedAt); err != nil {
		o.logger.Warn("failed to touch conversation", "conversation_id", conv.ID, "error", err)
	}

	return &Response{
		ConversationID:    conv.ID,
		ConversationTitle: conv.Title,
		MessageID:         assistantMsg.ID,
		Text:              text,
		CreatedAt:         assistantMsg.CreatedAt,
		Fallback:          usedFallback,
		ToolCalls:         trace.calls,
		ToolResults:       trace.results,
	}, nil
}

// toolTrace accumulates the calls and results across tool rounds.
type toolTrace struct {
	calls   []store.ToolCall
	results []store.ToolResult
}

// generate runs the completion/tool loop and always produces a reply.
// Backend failures switch to the stub responder, which cannot fail.
func (o *Orchestrator) generate(ctx context.Context, userID string, turns []llm.Turn) (string, toolTrace, bool) {
	provider := o.provider
	usedFallback := provider.Name() == o.fallback.Name()
	var trace toolTrace

	for round := 0; round <= o.opts.MaxToolRounds; round++ {
		completion, err := o.complete(ctx, provider, turns)
		if err != nil {
			if usedFallback {
				// The stub does not fail; anything else here is a bug
				o.logger.Error("fallback responder failed", "error", err)
				return "Sorry, something went wrong handling that request.", trace, true
			}
			o.logger.Warn("generation backend unavailable, using stub responder",
				"provider", provider.Name(),
				"error", err)
			provider = o.fallback
			usedFallback = true
			continue
		}

		if len(completion.ToolCalls) == 0 {
			text := strings.TrimSpace(completion.Text)
			if text == "" {
				text = "Okay."
			}
			return text, trace, usedFallback
		}

		results := make([]store.ToolResult, 0, len(completion.ToolCalls))
		for _, call := range completion.ToolCalls {
			// Scoped to the authenticated user, never the call's arguments
			results = append(results, o.executor.Execute(ctx, userID, call))
		}
		trace.calls = append(trace.calls, completion.ToolCalls...)
		trace.results = append(trace.results, results...)

		turns = append(turns,
			llm.Turn{Role: store.RoleAssistant, Content: completion.Text, ToolCalls: completion.ToolCalls},
			llm.Turn{ToolResults: results},
		)
	}

	o.logger.Warn("tool round limit reached", "rounds", o.opts.MaxToolRounds)
	return "I've made the changes I could; let me know if you'd like anything else.", trace, usedFallback
}

func (o *Orchestrator) complete(ctx context.Context, provider llm.Provider, turns []llm.Turn) (*llm.Completion, error) {
	cctx, cancel := context.WithTimeout(ctx, o.opts.CompletionTimeout)
	defer cancel()

	return provider.Complete(cctx, &llm.Request{
		System: systemPrompt,
		Turns:  turns,
		Tools:  tools.Definitions(),
	})
}

// resolveConversation loads an existing conversation (owned by userID) or
// lazily creates one titled after the first message.
func (o *Orchestrator) resolveConversation(ctx context.Context, userID, conversationID, message string) (*store.Conversation, error) {
	if conversationID != "" {
		// Scoped lookup: a foreign conversation reads as absent
		return o.store.GetConversation(ctx, userID, conversationID)
	}

	conv := &store.Conversation{
		UserID: userID,
		Title:  deriveTitle(message),
	}
	if err := o.store.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	o.logger.Debug("conversation created", "conversation_id", conv.ID, "user_id", userID)
	return conv, nil
}

// deriveTitle makes a conversation title from the first message.
func deriveTitle(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	runes := []rune(title)
	if len(runes) > maxTitleChars {
		title = strings.TrimSpace(string(runes[:maxTitleChars-1])) + "…"
	}
	return title
}

// historyToTurns converts persisted history into provider turns. Tool
// traces are not replayed into the context window; the assistant text
// already summarizes their outcome.
func historyToTurns(history []*store.Message) []llm.Turn {
	turns := make([]llm.Turn, 0, len(history))
	for _, msg := range history {
		turns = append(turns, llm.Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}
