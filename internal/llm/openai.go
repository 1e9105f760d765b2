// ABOUTME: OpenAI-compatible Provider using the official openai-go SDK.
// ABOUTME: Non-streaming chat completions with function tools.

package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/tansell/todochat/internal/store"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider implements Provider against any OpenAI-compatible
// chat-completions endpoint.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates a provider for the given endpoint. baseURL may
// be empty for the public OpenAI API; apiKey is required.
func NewOpenAIProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Complete implements Provider with a single non-streaming completion call.
func (p *OpenAIProvider) Complete(ctx context.Context, req *Request) (*Completion, error) {
	params := openai.ChatCompletionNewParams{
		Messages: convertTurns(req),
		Model:    openai.ChatModel(p.model),
		Tools:    convertTools(req),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrUnavailable)
	}

	msg := resp.Choices[0].Message
	completion := &Completion{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, store.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return completion, nil
}

// convertTurns maps provider-agnostic turns onto the OpenAI message union.
// Tool results expand into one tool message each, keyed by tool call id.
func convertTurns(req *Request) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Turns)+1)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}

	for _, turn := range req.Turns {
		switch {
		case len(turn.ToolResults) > 0:
			for _, res := range turn.ToolResults {
				msgs = append(msgs, openai.ToolMessage(string(res.Content), res.ToolCallID))
			}
		case turn.Role == store.RoleAssistant && len(turn.ToolCalls) > 0:
			msgs = append(msgs, assistantToolCallMessage(turn))
		case turn.Role == store.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(turn.Content))
		case turn.Role == store.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(turn.Content))
		default:
			msgs = append(msgs, openai.UserMessage(turn.Content))
		}
	}
	return msgs
}

// assistantToolCallMessage rebuilds an assistant turn that requested tools,
// which the API requires before the corresponding tool messages.
func assistantToolCallMessage(turn Turn) openai.ChatCompletionMessageParamUnion {
	asst := openai.ChatCompletionAssistantMessageParam{}
	if turn.Content != "" {
		asst.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openai.String(turn.Content),
		}
	}
	for _, tc := range turn.ToolCalls {
		asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
}

// convertTools maps tool definitions to OpenAI function tools. The input
// schemas are authored as JSON Schema strings, so they unmarshal directly
// into FunctionParameters.
func convertTools(req *Request) []openai.ChatCompletionToolUnionParam {
	if len(req.Tools) == 0 {
		return nil
	}

	result := make([]openai.ChatCompletionToolUnionParam, 0, len(req.Tools))
	for _, def := range req.Tools {
		var params openai.FunctionParameters
		if err := json.Unmarshal([]byte(def.InputSchema), &params); err != nil {
			// Schemas are compiled in; a broken one is a programming error
			panic(fmt.Sprintf("invalid tool schema for %s: %v", def.Name, err))
		}
		result = append(result, openai.ChatCompletionFunctionTool(
			openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  params,
			},
		))
	}
	return result
}
