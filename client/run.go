package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/event"
	"github.com/mwhitford/manifold/tool"
)

// Result aggregates a fully drained event stream into a single response.
type Result struct {
	// Content is the text of the final assistant message.
	Content string

	// Output is the structured response payload, when a response schema
	// was requested.
	Output string

	// ToolCalls and ToolResults record every tool round of the request,
	// positionally aligned.
	ToolCalls   []ai.ToolCall
	ToolResults []ai.ToolResult

	// Usage sums the priced usage of every provider round.
	Usage ai.ModelUsage
}

// Run sends the history to the model and blocks until the orchestrated
// request completes, returning the aggregated result. It is Stream with
// the event plumbing folded away.
func (c *Client) Run(ctx context.Context, modelID string, history ai.History, opts ...StreamOption) (*Result, error) {
	stream, err := c.Stream(ctx, modelID, history, opts...)
	if err != nil {
		return nil, err
	}
	return Collect(stream)
}

// Collect drains an event stream into a Result. It returns an error when
// the stream ends with an error event.
func Collect(stream <-chan event.Event) (*Result, error) {
	result := &Result{}
	var streamErr error

	for ev := range stream {
		switch ev.Type {
		case event.MessageComplete:
			result.Content = ev.Content
		case event.ResponseOutput:
			result.Output = ev.Content
		case event.ToolStart:
			result.ToolCalls = append(result.ToolCalls, ev.ToolCalls...)
		case event.ToolDone:
			if ev.ToolResult != nil {
				result.ToolResults = append(result.ToolResults, *ev.ToolResult)
			}
		case event.CostUpdate:
			if ev.Usage != nil {
				result.Usage.Add(*ev.Usage)
			}
		case event.Error:
			streamErr = errors.New(ev.Err)
		}
	}

	if streamErr != nil {
		return result, streamErr
	}
	return result, nil
}

// RunTyped sends the history to the model with a response schema generated
// from T and unmarshals the structured output into it. The schema name is
// the snake_case form of the type name. All options pass through to the
// underlying Run call; a caller-supplied response schema wins over the
// generated one.
func RunTyped[T any](ctx context.Context, c *Client, modelID string, history ai.History, opts ...StreamOption) (T, error) {
	var zero T

	t := reflect.TypeOf(zero)
	if t == nil {
		return zero, fmt.Errorf("RunTyped: cannot use nil type")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	schemaName := toSnakeCase(t.Name())
	if schemaName == "" {
		schemaName = "response"
	}

	schema, err := tool.SchemaFor[T]()
	if err != nil {
		return zero, fmt.Errorf("RunTyped: failed to generate schema: %w", err)
	}

	allOpts := make([]StreamOption, 0, len(opts)+1)
	allOpts = append(allOpts, WithOptions(ai.WithResponseSchema(&ai.ResponseSchema{
		Name:   schemaName,
		Schema: schema,
	})))
	allOpts = append(allOpts, opts...)

	result, err := c.Run(ctx, modelID, history, allOpts...)
	if err != nil {
		return zero, err
	}

	payload := result.Output
	if payload == "" {
		payload = result.Content
	}

	var out T
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return zero, &UnmarshalError{
			Content:    payload,
			TargetType: t.String(),
			Err:        err,
		}
	}
	return out, nil
}

// UnmarshalError is returned when a structured response cannot be
// unmarshaled into the target type.
type UnmarshalError struct {
	Content    string
	TargetType string
	Err        error
}

func (e *UnmarshalError) Error() string {
	return fmt.Sprintf("failed to unmarshal response into %s: %v", e.TargetType, e.Err)
}

func (e *UnmarshalError) Unwrap() error {
	return e.Err
}

// toSnakeCase converts a CamelCase string to snake_case.
func toSnakeCase(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				result.WriteRune('_')
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
