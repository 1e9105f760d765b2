// ABOUTME: Streaming presenter turning a single chat response into chunked output.
// ABOUTME: State machine with supersede-on-send, cancellation, and callbacks.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/tansell/todochat/internal/api"
)

// Status is the presenter's lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusStreaming
	StatusComplete
	StatusError
	StatusCancelled
)

// String returns the lowercase state name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusStreaming:
		return "streaming"
	case StatusComplete:
		return "complete"
	case StatusError:
		return "error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// terminal reports whether the state is one of the three end states.
func (s Status) terminal() bool {
	return s == StatusComplete || s == StatusError || s == StatusCancelled
}

// Callbacks receive presenter events. Each fires at most once per send
// attempt, except OnChunk which fires once per emitted chunk. All callbacks
// run on the presenter's streaming goroutine. OnChunk runs while the
// presenter holds its internal lock and must not call back into the
// Presenter.
type Callbacks struct {
	OnChunk    func(chunk string)
	OnComplete func(resp *api.ChatResponse)
	OnError    func(err error)
}

const (
	defaultChunkSize  = 16
	defaultChunkDelay = 30 * time.Millisecond
)

// Options tune the presenter. Zero values select the defaults.
type Options struct {
	ChunkSize  int           // runes per emitted chunk
	ChunkDelay time.Duration // pause between chunks
	HTTPClient *http.Client
}

// Presenter sends chat messages and replays each response as a simulated
// stream of fixed-size chunks. A new Send supersedes any in-flight one.
type Presenter struct {
	baseURL string
	token   string
	opts    Options
	cb      Callbacks

	mu         sync.Mutex
	status     Status
	generation int
	cancel     context.CancelFunc
}

// New creates a Presenter for the given server base URL and bearer token.
func New(baseURL, token string, cb Callbacks, opts Options) *Presenter {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.ChunkDelay <= 0 {
		opts.ChunkDelay = defaultChunkDelay
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Presenter{
		baseURL: baseURL,
		token:   token,
		opts:    opts,
		cb:      cb,
		status:  StatusIdle,
	}
}

// Status returns the current lifecycle state.
func (p *Presenter) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Send posts one chat message and streams the reply through the callbacks.
// It returns immediately; any in-flight send is cancelled and superseded.
func (p *Presenter) Send(ctx context.Context, userID, text, conversationID string) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.generation++
	gen := p.generation
	sendCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.status = StatusConnecting
	p.mu.Unlock()

	go p.run(sendCtx, gen, userID, text, conversationID)
}

// Cancel stops the in-flight send, if any. The attempt transitions to
// cancelled once its goroutine observes the cancellation.
func (p *Presenter) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Reset returns a terminal presenter to idle. No-op while a send is live.
func (p *Presenter) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status.terminal() {
		p.status = StatusIdle
	}
}

// run performs the POST and the chunk emission loop for one attempt.
func (p *Presenter) run(ctx context.Context, gen int, userID, text, conversationID string) {
	resp, err := p.post(ctx, userID, text, conversationID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			p.transition(gen, StatusCancelled)
			return
		}
		if p.transition(gen, StatusError) && p.cb.OnError != nil {
			p.cb.OnError(err)
		}
		return
	}

	if !p.transition(gen, StatusStreaming) {
		return
	}

	runes := []rune(resp.Response)
	for i := 0; i < len(runes); i += p.opts.ChunkSize {
		select {
		case <-ctx.Done():
			p.transition(gen, StatusCancelled)
			return
		case <-time.After(p.opts.ChunkDelay):
		}

		end := i + p.opts.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if !p.emit(gen, string(runes[i:end])) {
			return
		}
	}

	if p.transition(gen, StatusComplete) && p.cb.OnComplete != nil {
		p.cb.OnComplete(resp)
	}
}

// transition moves to next if the attempt is still current. Superseded
// attempts must not clobber the live attempt's state.
func (p *Presenter) transition(gen int, next Status) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return false
	}
	p.status = next
	return true
}

// emit delivers one chunk if the attempt is still current. The currency
// check and the callback happen under the same lock that Send takes to
// bump the generation, so a superseded attempt can never slip a stale
// chunk in after the superseding attempt has started emitting.
func (p *Presenter) emit(gen int, chunk string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return false
	}
	if p.cb.OnChunk != nil {
		p.cb.OnChunk(chunk)
	}
	return true
}

// post sends the chat request and decodes the response.
func (p *Presenter) post(ctx context.Context, userID, text, conversationID string) (*api.ChatResponse, error) {
	body, err := json.Marshal(api.ChatRequest{Message: text, ConversationID: conversationID})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/api/%s/chat", p.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	httpResp, err := p.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(httpResp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("server returned %d: %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("server returned %d", httpResp.StatusCode)
	}

	var chatResp api.ChatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &chatResp, nil
}
