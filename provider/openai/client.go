// Package openai adapts the OpenAI API to the provider contract. It covers
// chat completions (streaming), embeddings, and image generation.
package openai

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/cost"
	"github.com/mwhitford/manifold/event"
	"github.com/mwhitford/manifold/provider"
)

// Client wraps the OpenAI SDK to implement provider.Provider.
type Client struct {
	client  *openai.Client
	tracker *cost.Tracker
}

// ClientOption configures the OpenAI client.
type ClientOption func(*Client)

// WithTracker sets the cost tracker usage is reported to.
// Defaults to cost.Default.
func WithTracker(t *cost.Tracker) ClientOption {
	return func(c *Client) { c.tracker = t }
}

// New creates an OpenAI client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		client:  &client,
		tracker: cost.Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the provider identifier.
func (c *Client) ID() ai.ProviderID { return ai.ProviderOpenAI }

// CreateResponseStream issues one chat-completion round and streams the
// unified event sequence.
func (c *Client) CreateResponseStream(ctx context.Context, req provider.Request) (<-chan event.Event, error) {
	params, err := buildParams(req)
	if err != nil {
		return nil, err
	}
	ch := event.NewChannel()
	go c.stream(ctx, req, params, ch)
	return ch, nil
}

func buildParams(req provider.Request) (openai.ChatCompletionNewParams, error) {
	opts := req.Options

	messages, err := convertHistory(req.History)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: messages,
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature != nil {
		params.Temperature = openai.Float(*opts.Temperature)
	}
	if opts.TopP != nil {
		params.TopP = openai.Float(*opts.TopP)
	}
	if opts.Seed != nil {
		params.Seed = openai.Int(*opts.Seed)
	}
	if len(opts.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: opts.Stop,
		}
	}
	if len(opts.Tools) > 0 {
		params.Tools = convertTools(opts.Tools)
		if opts.ToolChoice != "" {
			params.ToolChoice = convertToolChoice(opts.ToolChoice)
		}
	}
	if opts.ResponseSchema != nil {
		params.ResponseFormat = buildSchemaFormat(opts.ResponseSchema)
	}

	return params, nil
}

func (c *Client) stream(ctx context.Context, req provider.Request, params openai.ChatCompletionNewParams, ch chan event.Event) {
	defer close(ch)

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	messageID := ai.GenerateMessageID()
	event.Emit(ch, event.Event{Type: event.MessageStart, MessageID: messageID})

	var acc openai.ChatCompletionAccumulator
	var partial strings.Builder
	order := 0

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			order++
			partial.WriteString(chunk.Choices[0].Delta.Content)
			event.Emit(ch, event.Event{
				Type:      event.MessageDelta,
				MessageID: messageID,
				Order:     order,
				Delta:     chunk.Choices[0].Delta.Content,
			})
		}
	}

	if err := stream.Err(); err != nil {
		event.Emit(ch, event.Event{Type: event.MessageComplete, MessageID: messageID, Content: partial.String()})
		event.Emit(ch, event.Event{Type: event.Error, MessageID: messageID, Err: wrapError(err).Error()})
		return
	}

	content := ""
	var toolCalls []ai.ToolCall
	if len(acc.Choices) > 0 {
		content = acc.Choices[0].Message.Content
		toolCalls = extractToolCalls(acc.Choices[0].Message.ToolCalls)
	}

	event.Emit(ch, event.Event{Type: event.MessageComplete, MessageID: messageID, Content: content})
	if req.Options.ResponseSchema != nil && content != "" {
		event.Emit(ch, event.Event{Type: event.ResponseOutput, MessageID: messageID, Content: content})
	}
	if len(toolCalls) > 0 {
		event.Emit(ch, event.Event{Type: event.ToolStart, MessageID: messageID, ToolCalls: toolCalls})
	}

	c.tracker.Report(ch, ai.ModelUsage{
		Model:        req.Model,
		InputTokens:  int(acc.Usage.PromptTokens),
		OutputTokens: int(acc.Usage.CompletionTokens),
		CachedTokens: int(acc.Usage.PromptTokensDetails.CachedTokens),
		Modality:     ai.ModalityText,
		RequestID:    req.RequestID,
	})

	event.Emit(ch, event.Event{Type: event.StreamEnd, MessageID: messageID})
}

var (
	_ provider.Provider       = (*Client)(nil)
	_ provider.Embedder       = (*Client)(nil)
	_ provider.ImageGenerator = (*Client)(nil)
)
