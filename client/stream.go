package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/event"
	"github.com/mwhitford/manifold/provider"
	"github.com/mwhitford/manifold/retry"
	"github.com/mwhitford/manifold/tool"
)

// DefaultMaxToolCalls bounds the number of tool-calling rounds in one
// Stream request.
const DefaultMaxToolCalls = 10

// ToolCallHook observes or rewrites a batch of tool results before they
// are emitted and appended to the history. Results arrive positionally
// aligned with calls; the hook must return a slice of the same length.
type ToolCallHook func(ctx context.Context, calls []ai.ToolCall, results []ai.ToolResult) []ai.ToolResult

type streamConfig struct {
	maxToolCalls    int
	executeTools    bool
	agentID         string
	runner          *tool.Runner
	processor       *tool.Processor
	processToolCall ToolCallHook
	requestOpts     []ai.Option
}

// StreamOption configures a single Stream request.
type StreamOption func(*streamConfig)

// WithMaxToolCalls limits the number of tool-calling rounds before the
// stream errors out. Defaults to DefaultMaxToolCalls.
func WithMaxToolCalls(n int) StreamOption {
	return func(c *streamConfig) { c.maxToolCalls = n }
}

// WithExecuteTools controls whether the loop executes requested tool
// calls. When false, the stream relays the tool_start event and ends,
// leaving execution to the caller.
func WithExecuteTools(execute bool) StreamOption {
	return func(c *streamConfig) { c.executeTools = execute }
}

// WithAgentID attributes the request and its tool executions to an agent.
func WithAgentID(id string) StreamOption {
	return func(c *streamConfig) { c.agentID = id }
}

// WithToolRegistry uses the given registry instead of the client default.
func WithToolRegistry(r *tool.Registry) StreamOption {
	return func(c *streamConfig) { c.runner = tool.NewRunner(r) }
}

// WithToolRunner uses the given runner instead of the client default.
func WithToolRunner(r *tool.Runner) StreamOption {
	return func(c *streamConfig) { c.runner = r }
}

// WithProcessor uses the given output post-processor for this request.
func WithProcessor(p *tool.Processor) StreamOption {
	return func(c *streamConfig) { c.processor = p }
}

// WithProcessToolCall installs a hook over each executed batch of tool
// results.
func WithProcessToolCall(hook ToolCallHook) StreamOption {
	return func(c *streamConfig) { c.processToolCall = hook }
}

// WithOptions passes request options (temperature, max tokens, response
// schema, ...) through to every provider round of the stream.
func WithOptions(opts ...ai.Option) StreamOption {
	return func(c *streamConfig) { c.requestOpts = append(c.requestOpts, opts...) }
}

// Stream sends the history to the model and returns the event stream for
// the full orchestrated request. Tool calls requested by the model are
// executed against the registry and their results fed back until the
// model responds without tools, a limit is hit, or an error occurs. The
// returned channel carries exactly one terminal event, and it is last.
func (c *Client) Stream(ctx context.Context, modelID string, history ai.History, opts ...StreamOption) (<-chan event.Event, error) {
	resolved, providerID, err := c.resolveModel(modelID, c.defaults.Chat, "chat")
	if err != nil {
		return nil, err
	}

	p, err := c.providerFor(ctx, providerID, resolved)
	if err != nil {
		return nil, err
	}

	cfg := &streamConfig{
		maxToolCalls: DefaultMaxToolCalls,
		executeTools: true,
		runner:       c.runner,
		processor:    c.processor,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	out := event.NewChannel()
	go c.orchestrate(ctx, p, resolved, history, cfg, out)
	return out, nil
}

// orchestrate drives the request loop: stream one provider round, relay
// its events, execute any requested tools, extend the history, repeat.
// Per-round stream_end events from the provider are absorbed; the loop
// emits the single terminal event for the whole request.
func (c *Client) orchestrate(ctx context.Context, p provider.Provider, modelID string, history ai.History, cfg *streamConfig, out chan<- event.Event) {
	defer close(out)

	hist := history.Clone()
	requestID := uuid.New().String()
	roundsWithTools := 0

	for {
		reqOpts := ai.ApplyOptions(cfg.requestOpts...)
		reqOpts.Model = modelID
		if len(reqOpts.Tools) == 0 {
			reqOpts.Tools = cfg.runner.Registry().Definitions()
		}

		req := provider.Request{
			Model:     modelID,
			History:   hist,
			Options:   *reqOpts,
			AgentID:   cfg.agentID,
			RequestID: requestID,
		}

		stream, err := retry.DoStream(ctx, c.retryConfig, func() (<-chan event.Event, error) {
			return p.CreateResponseStream(ctx, req)
		})
		if err != nil {
			event.Emit(out, event.Event{Type: event.Error, Err: err.Error()})
			return
		}

		var calls []ai.ToolCall
		var content string
		var messageID string
		failed := false

		for ev := range stream {
			switch ev.Type {
			case event.StreamEnd:
				// Round boundary, not request boundary.
				continue
			case event.Error:
				event.Emit(out, ev)
				failed = true
			case event.ToolStart:
				calls = append(calls, ev.ToolCalls...)
				event.Emit(out, ev)
			case event.MessageComplete:
				content = ev.Content
				messageID = ev.MessageID
				event.Emit(out, ev)
			default:
				event.Emit(out, ev)
			}
		}
		if failed {
			return
		}

		if content != "" {
			hist = hist.Append(ai.Message{ID: messageID, Role: ai.RoleAssistant, Content: content})
		}

		if len(calls) == 0 {
			event.Emit(out, event.Event{Type: event.StreamEnd})
			return
		}
		if !cfg.executeTools {
			event.Emit(out, event.Event{Type: event.StreamEnd})
			return
		}

		roundsWithTools++
		if roundsWithTools > cfg.maxToolCalls {
			event.Emit(out, event.Event{
				Type: event.Error,
				Err:  fmt.Sprintf("tool call limit reached after %d rounds", cfg.maxToolCalls),
			})
			return
		}

		results := c.executeCalls(ctx, cfg, calls)
		if cfg.processToolCall != nil {
			if hooked := cfg.processToolCall(ctx, calls, results); len(hooked) == len(results) {
				results = hooked
			}
		}

		for i, call := range calls {
			result := results[i]
			callCopy := call
			event.Emit(out, event.Event{Type: event.ToolDone, ToolCall: &callCopy, ToolResult: &result})
			hist = hist.Append(
				ai.FunctionCall{ID: call.ID, CallID: call.CallID, Name: call.Name, Arguments: call.Arguments},
				ai.FunctionCallOutput{CallID: call.ResolvedCallID(), Name: call.Name, Output: result.Content},
			)
		}
	}
}

// executeCalls runs a batch of tool calls concurrently and returns their
// results positionally aligned with the input.
func (c *Client) executeCalls(ctx context.Context, cfg *streamConfig, calls []ai.ToolCall) []ai.ToolResult {
	results := make([]ai.ToolResult, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call ai.ToolCall) {
			defer wg.Done()
			result := cfg.runner.Execute(ctx, call, cfg.agentID)
			if !result.IsError {
				if f, ok := cfg.runner.Registry().Get(call.Name); ok {
					result.Content = cfg.processor.Process(ctx, f, result.Content)
				}
			}
			results[i] = result
		}(i, call)
	}
	wg.Wait()

	return results
}
