// Package event defines the streaming event vocabulary shared by every
// provider adapter and every consumer. Adapters translate vendor streams
// into this closed union; the orchestration loop relays it unmodified.
package event

import (
	"time"

	ai "github.com/mwhitford/manifold"
)

// Type identifies the kind of event.
type Type string

// Message lifecycle events
const (
	// MessageStart fires when an assistant message begins.
	MessageStart Type = "message_start"

	// MessageDelta fires for each streaming token of a message.
	MessageDelta Type = "message_delta"

	// MessageComplete fires when an assistant message completes. Adapters
	// emit it (possibly with empty content) before ending every text-bearing
	// round, even on internal error.
	MessageComplete Type = "message_complete"
)

// File output lifecycle events (generated artifacts, e.g. images)
const (
	// FileStart fires when a generated file begins streaming.
	FileStart Type = "file_start"

	// FileDelta fires for each chunk of a streaming file payload.
	FileDelta Type = "file_delta"

	// FileComplete fires when a generated file is fully transferred.
	FileComplete Type = "file_complete"
)

// Tool call lifecycle events
const (
	// ToolStart fires when the model requests one or more tool calls.
	// The ToolCalls field carries fully-formed calls with parseable
	// JSON argument strings.
	ToolStart Type = "tool_start"

	// ToolDelta fires for incremental tool argument streaming.
	ToolDelta Type = "tool_delta"

	// ToolDone fires when a tool execution produced its result.
	ToolDone Type = "tool_done"
)

// Accounting, agent and terminal events
const (
	// CostUpdate carries a priced usage record for one provider round.
	CostUpdate Type = "cost_update"

	// Error reports a failure as a human-readable string. It is terminal
	// for the round that produced it.
	Error Type = "error"

	// ResponseOutput carries a complete structured response payload.
	ResponseOutput Type = "response_output"

	// AgentStart, AgentStatus and AgentDone report sub-agent lifecycle.
	AgentStart  Type = "agent_start"
	AgentStatus Type = "agent_status"
	AgentDone   Type = "agent_done"

	// StreamEnd marks successful completion of a logical request.
	StreamEnd Type = "stream_end"
)

// Terminal reports whether the event type ends a request stream.
// Every stream contains exactly one terminal event, and it is last.
func (t Type) Terminal() bool {
	return t == StreamEnd || t == Error
}

// Event represents one occurrence in a streaming response.
//
// MessageID is stable across all delta events belonging to one logical
// message, so consumers can reassemble text by concatenation in arrival
// order. Order, when positive, is a monotonically increasing per-message
// sequence counter that lets consumers re-sort out-of-order deliveries
// before concatenating.
type Event struct {
	// Type identifies the kind of event.
	Type Type

	// MessageID correlates Start/Delta/Complete events of one message.
	MessageID string

	// Order is a 1-based per-message sequence counter, 0 when absent.
	Order int

	// Delta contains incremental content for MessageDelta and FileDelta.
	Delta string

	// Content contains the full message text for MessageComplete, or the
	// structured payload for ResponseOutput.
	Content string

	// ToolCalls carries the calls requested in a ToolStart event.
	ToolCalls []ai.ToolCall

	// ToolCall identifies the call for ToolDelta and ToolDone events.
	ToolCall *ai.ToolCall

	// ToolResult carries the execution result for ToolDone events.
	ToolResult *ai.ToolResult

	// Usage carries the priced usage record for CostUpdate events.
	Usage *ai.ModelUsage

	// Err is the human-readable description for Error events.
	Err string

	// Agent names the sub-agent for agent lifecycle events; Status carries
	// its progress description for AgentStatus.
	Agent  string
	Status string

	// MimeType and FileName describe the payload of file events.
	MimeType string
	FileName string

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Emit sends an event with a timestamp to the channel. The send blocks
// until the consumer is ready: relayed provider events must never be
// dropped, ordering is part of the protocol contract.
func Emit(ch chan<- Event, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	ch <- e
}

// NewChannel creates an event channel with a small buffer. Backpressure is
// the consumer's pull rate; no deep buffering is required by the protocol.
func NewChannel() chan Event {
	return make(chan Event, 16)
}
