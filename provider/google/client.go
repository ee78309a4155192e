// Package google adapts the Google GenAI API (Gemini, Imagen, Gemini
// embeddings) to the provider contract.
package google

import (
	"context"
	"fmt"
	"strings"

	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/cost"
	"github.com/mwhitford/manifold/event"
	"github.com/mwhitford/manifold/provider"
	"google.golang.org/genai"
)

// Client wraps the Google GenAI SDK to implement provider.Provider.
type Client struct {
	client  *genai.Client
	tracker *cost.Tracker
}

// ClientOption configures the Google client.
type ClientOption func(*Client)

// WithTracker sets the cost tracker usage is reported to.
// Defaults to cost.Default.
func WithTracker(t *cost.Tracker) ClientOption {
	return func(c *Client) { c.tracker = t }
}

// New creates a Google GenAI client with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{
		client:  client,
		tracker: cost.Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ID returns the provider identifier.
func (c *Client) ID() ai.ProviderID { return ai.ProviderGoogle }

// CreateResponseStream issues one GenerateContent round and streams the
// unified event sequence.
func (c *Client) CreateResponseStream(ctx context.Context, req provider.Request) (<-chan event.Event, error) {
	contents, config, err := buildRequest(req)
	if err != nil {
		return nil, err
	}
	ch := event.NewChannel()
	go c.stream(ctx, req, contents, config, ch)
	return ch, nil
}

func buildRequest(req provider.Request) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	opts := req.Options

	contents, system, err := convertHistory(req.History)
	if err != nil {
		return nil, nil, err
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature != nil {
		temp := float32(*opts.Temperature)
		config.Temperature = &temp
	}
	if opts.TopP != nil {
		topP := float32(*opts.TopP)
		config.TopP = &topP
	}
	if opts.TopK != nil {
		topK := float32(*opts.TopK)
		config.TopK = &topK
	}
	if len(opts.Stop) > 0 {
		config.StopSequences = opts.Stop
	}
	if opts.Seed != nil {
		seed := int32(*opts.Seed)
		config.Seed = &seed
	}
	if len(opts.Tools) > 0 {
		config.Tools = convertTools(opts.Tools)
		if opts.ToolChoice != "" {
			config.ToolConfig = convertToolChoice(opts.ToolChoice)
		}
	}
	if opts.ResponseSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = convertJSONSchema(opts.ResponseSchema.Schema)
	}

	return contents, config, nil
}

func (c *Client) stream(ctx context.Context, req provider.Request, contents []*genai.Content, config *genai.GenerateContentConfig, ch chan event.Event) {
	defer close(ch)

	messageID := ai.GenerateMessageID()
	event.Emit(ch, event.Event{Type: event.MessageStart, MessageID: messageID})

	var partial strings.Builder
	var allParts []*genai.Part
	var usage ai.ModelUsage
	order := 0
	iterCount := 0

	fail := func(err error) {
		event.Emit(ch, event.Event{Type: event.MessageComplete, MessageID: messageID, Content: partial.String()})
		event.Emit(ch, event.Event{Type: event.Error, MessageID: messageID, Err: err.Error()})
	}

	for resp, err := range c.client.Models.GenerateContentStream(ctx, req.Model, contents, config) {
		iterCount++
		if err != nil {
			fail(wrapError(err))
			return
		}

		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			fail(&BlockedError{Reason: string(resp.PromptFeedback.BlockReason)})
			return
		}

		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			for _, part := range resp.Candidates[0].Content.Parts {
				allParts = append(allParts, part)
				if part.Text != "" {
					order++
					partial.WriteString(part.Text)
					event.Emit(ch, event.Event{
						Type:      event.MessageDelta,
						MessageID: messageID,
						Order:     order,
						Delta:     part.Text,
					})
				}
			}
		}

		if resp.UsageMetadata != nil {
			usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
			usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
			usage.CachedTokens = int(resp.UsageMetadata.CachedContentTokenCount)
		}
	}

	if iterCount == 0 {
		fail(fmt.Errorf("stream returned no data"))
		return
	}

	content := partial.String()
	event.Emit(ch, event.Event{Type: event.MessageComplete, MessageID: messageID, Content: content})
	if req.Options.ResponseSchema != nil && content != "" {
		event.Emit(ch, event.Event{Type: event.ResponseOutput, MessageID: messageID, Content: content})
	}
	if toolCalls := extractToolCalls(allParts); len(toolCalls) > 0 {
		event.Emit(ch, event.Event{Type: event.ToolStart, MessageID: messageID, ToolCalls: toolCalls})
	}

	usage.Model = req.Model
	usage.Modality = ai.ModalityText
	usage.RequestID = req.RequestID
	c.tracker.Report(ch, usage)

	event.Emit(ch, event.Event{Type: event.StreamEnd, MessageID: messageID})
}

var (
	_ provider.Provider       = (*Client)(nil)
	_ provider.Embedder       = (*Client)(nil)
	_ provider.ImageGenerator = (*Client)(nil)
)
