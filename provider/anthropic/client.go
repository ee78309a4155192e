// Package anthropic adapts the Anthropic Claude API to the provider
// contract, translating conversation history into Messages API params and
// the SDK's event stream into the unified event sequence.
//
// Anthropic does not offer embeddings or image generation, so the adapter
// implements only the required streaming capability.
package anthropic

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/cost"
	"github.com/mwhitford/manifold/event"
	"github.com/mwhitford/manifold/provider"
)

const defaultMaxTokens = 4096

// Client wraps the Anthropic SDK to implement provider.Provider.
type Client struct {
	client  *anthropic.Client
	tracker *cost.Tracker
}

// ClientOption configures the Anthropic client.
type ClientOption func(*Client)

// WithTracker sets the cost tracker usage is reported to.
// Defaults to cost.Default.
func WithTracker(t *cost.Tracker) ClientOption {
	return func(c *Client) { c.tracker = t }
}

// New creates an Anthropic client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
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
func (c *Client) ID() ai.ProviderID { return ai.ProviderAnthropic }

// CreateResponseStream issues one Messages API round and streams the
// unified event sequence.
func (c *Client) CreateResponseStream(ctx context.Context, req provider.Request) (<-chan event.Event, error) {
	params, useJSONTool := buildParams(req)
	ch := event.NewChannel()
	go c.stream(ctx, req, params, useJSONTool, ch)
	return ch, nil
}

func buildParams(req provider.Request) (anthropic.MessageNewParams, bool) {
	opts := req.Options

	maxTokens := int64(defaultMaxTokens)
	if opts.MaxTokens > 0 {
		maxTokens = int64(opts.MaxTokens)
	}

	msgs, system := convertHistory(req.History)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if opts.Temperature != nil {
		params.Temperature = anthropic.Float(*opts.Temperature)
	}
	if opts.TopP != nil {
		params.TopP = anthropic.Float(*opts.TopP)
	}
	if opts.TopK != nil {
		params.TopK = anthropic.Int(int64(*opts.TopK))
	}
	if len(opts.Stop) > 0 {
		params.StopSequences = opts.Stop
	}

	useJSONTool := opts.ResponseSchema != nil
	if useJSONTool {
		jsonTool, jsonToolChoice := buildJSONTool(opts.ResponseSchema)
		params.Tools = append(convertTools(opts.Tools), jsonTool)
		params.ToolChoice = jsonToolChoice
	} else if len(opts.Tools) > 0 {
		params.Tools = convertTools(opts.Tools)
		if opts.ToolChoice != "" && opts.ToolChoice != ai.ToolChoiceNone {
			params.ToolChoice = convertToolChoice(opts.ToolChoice)
		}
	}

	return params, useJSONTool
}

func (c *Client) stream(ctx context.Context, req provider.Request, params anthropic.MessageNewParams, useJSONTool bool, ch chan event.Event) {
	defer close(ch)

	stream := c.client.Messages.NewStreaming(ctx, params)
	messageID := ai.GenerateMessageID()
	event.Emit(ch, event.Event{Type: event.MessageStart, MessageID: messageID})

	var acc anthropic.Message
	var partial strings.Builder
	order := 0

	for stream.Next() {
		chunk := stream.Current()
		acc.Accumulate(chunk)

		if chunk.Type == "content_block_delta" {
			delta := chunk.AsContentBlockDelta()
			if td := delta.Delta.AsTextDelta(); td.Type == "text_delta" {
				order++
				partial.WriteString(td.Text)
				event.Emit(ch, event.Event{
					Type:      event.MessageDelta,
					MessageID: messageID,
					Order:     order,
					Delta:     td.Text,
				})
			}
		}
	}

	if err := stream.Err(); err != nil {
		// The message is closed with whatever content arrived; partial
		// output stays visible to the caller.
		event.Emit(ch, event.Event{Type: event.MessageComplete, MessageID: messageID, Content: partial.String()})
		event.Emit(ch, event.Event{Type: event.Error, MessageID: messageID, Err: wrapError(err).Error()})
		return
	}

	content := ""
	structured := ""
	var toolCalls []ai.ToolCall
	for _, block := range acc.Content {
		switch block.Type {
		case "text":
			content += block.Text
		case "tool_use":
			if useJSONTool && block.Name == jsonResponseToolName {
				structured = string(block.Input)
			} else {
				toolCalls = append(toolCalls, ai.ToolCall{
					ID:        block.ID,
					Name:      block.Name,
					Arguments: string(block.Input),
				})
			}
		}
	}

	event.Emit(ch, event.Event{Type: event.MessageComplete, MessageID: messageID, Content: content})
	if structured != "" {
		event.Emit(ch, event.Event{Type: event.ResponseOutput, MessageID: messageID, Content: structured})
	}
	if len(toolCalls) > 0 {
		event.Emit(ch, event.Event{Type: event.ToolStart, MessageID: messageID, ToolCalls: toolCalls})
	}

	c.tracker.Report(ch, ai.ModelUsage{
		Model:        req.Model,
		InputTokens:  int(acc.Usage.InputTokens),
		OutputTokens: int(acc.Usage.OutputTokens),
		CachedTokens: int(acc.Usage.CacheReadInputTokens),
		Modality:     ai.ModalityText,
		RequestID:    req.RequestID,
	})

	event.Emit(ch, event.Event{Type: event.StreamEnd, MessageID: messageID})
}

var _ provider.Provider = (*Client)(nil)
