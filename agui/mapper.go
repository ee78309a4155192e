// Package agui bridges manifold event streams to the AG-UI protocol, so a
// browser frontend speaking AG-UI can render a streaming request live.
package agui

import (
	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/mwhitford/manifold/event"
)

// Mapper converts manifold events to AG-UI events for a single run.
// A tool_start event carrying several calls fans out into one AG-UI
// start/args/end triple per call, so MapEvent returns a slice.
//
// Create a new Mapper per run; a Mapper is not safe for concurrent use.
type Mapper struct {
	threadID string
	runID    string
}

// NewMapper creates a Mapper for one run. Empty ids are generated.
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{
		threadID: threadID,
		runID:    runID,
	}
}

// ThreadID returns the thread ID for this mapper.
func (m *Mapper) ThreadID() string {
	return m.threadID
}

// RunID returns the run ID for this mapper.
func (m *Mapper) RunID() string {
	return m.runID
}

// RunStarted returns a RUN_STARTED event.
func (m *Mapper) RunStarted() events.Event {
	return events.NewRunStartedEvent(m.threadID, m.runID)
}

// RunFinished returns a RUN_FINISHED event.
func (m *Mapper) RunFinished() events.Event {
	return events.NewRunFinishedEvent(m.threadID, m.runID)
}

// RunError returns a RUN_ERROR event.
func (m *Mapper) RunError(msg string) events.Event {
	if msg == "" {
		msg = "unknown error"
	}
	return events.NewRunErrorEvent(msg)
}

// MapEvent converts one manifold event to its AG-UI equivalents.
// Returns nil for events with no AG-UI counterpart.
func (m *Mapper) MapEvent(e event.Event) []events.Event {
	switch e.Type {
	case event.MessageStart:
		return []events.Event{events.NewTextMessageStartEvent(
			e.MessageID,
			events.WithRole(RoleAssistant),
		)}
	case event.MessageDelta:
		return []events.Event{events.NewTextMessageContentEvent(e.MessageID, e.Delta)}
	case event.MessageComplete:
		return []events.Event{events.NewTextMessageEndEvent(e.MessageID)}

	case event.ToolStart:
		out := make([]events.Event, 0, len(e.ToolCalls)*3)
		for _, call := range e.ToolCalls {
			out = append(out,
				events.NewToolCallStartEvent(call.ID, call.Name),
				events.NewToolCallArgsEvent(call.ID, call.Arguments),
				events.NewToolCallEndEvent(call.ID),
			)
		}
		return out
	case event.ToolDone:
		if e.ToolCall == nil || e.ToolResult == nil {
			return nil
		}
		messageID := events.GenerateMessageID()
		return []events.Event{events.NewToolCallResultEvent(messageID, e.ToolCall.ID, e.ToolResult.Content)}

	case event.StreamEnd:
		return []events.Event{m.RunFinished()}
	case event.Error:
		return []events.Event{m.RunError(e.Err)}

	// Cost accounting and agent lifecycle have no AG-UI equivalent.
	case event.CostUpdate, event.AgentStart, event.AgentStatus, event.AgentDone:
		return nil

	default:
		return nil
	}
}
