package agui

import (
	ai "github.com/mwhitford/manifold"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"
)

// Role constants matching the AG-UI protocol.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// ToHistory converts AG-UI messages to a conversation history. Assistant
// messages carrying tool calls expand into a message item plus one
// function call item per call; tool messages become function call
// outputs.
func ToHistory(msgs []events.Message) ai.History {
	history := make(ai.History, 0, len(msgs))
	for _, msg := range msgs {
		history = append(history, toItems(msg)...)
	}
	return history
}

func toItems(msg events.Message) []ai.Item {
	if msg.Role == RoleTool && msg.ToolCallID != nil {
		content := ""
		if msg.Content != nil {
			content = *msg.Content
		}
		return []ai.Item{ai.FunctionCallOutput{
			CallID: *msg.ToolCallID,
			Output: content,
		}}
	}

	var items []ai.Item
	if msg.Content != nil && *msg.Content != "" {
		items = append(items, ai.Message{
			ID:      msg.ID,
			Role:    toRole(msg.Role),
			Content: *msg.Content,
		})
	}
	for _, tc := range msg.ToolCalls {
		items = append(items, ai.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return items
}

// FromHistory converts a conversation history to AG-UI messages.
// Function call items fold into assistant messages with tool calls;
// outputs become tool messages.
func FromHistory(history ai.History) []events.Message {
	result := make([]events.Message, 0, len(history))
	for _, item := range history {
		switch it := item.(type) {
		case ai.Message:
			m := events.Message{
				ID:   it.ID,
				Role: fromRole(it.Role),
			}
			if m.ID == "" {
				m.ID = events.GenerateMessageID()
			}
			if it.Content != "" {
				content := it.Content
				m.Content = &content
			}
			result = append(result, m)
		case ai.FunctionCall:
			result = append(result, events.Message{
				ID:   events.GenerateMessageID(),
				Role: RoleAssistant,
				ToolCalls: []events.ToolCall{{
					ID:   it.ResolvedCallID(),
					Type: "function",
					Function: events.Function{
						Name:      it.Name,
						Arguments: it.Arguments,
					},
				}},
			})
		case ai.FunctionCallOutput:
			callID := it.CallID
			output := it.Output
			result = append(result, events.Message{
				ID:         events.GenerateMessageID(),
				Role:       RoleTool,
				ToolCallID: &callID,
				Content:    &output,
			})
		}
	}
	return result
}

func toRole(role string) ai.Role {
	switch role {
	case RoleUser:
		return ai.RoleUser
	case RoleAssistant:
		return ai.RoleAssistant
	case RoleSystem:
		return ai.RoleSystem
	default:
		return ai.RoleUser
	}
}

func fromRole(role ai.Role) string {
	switch role {
	case ai.RoleUser:
		return RoleUser
	case ai.RoleAssistant:
		return RoleAssistant
	case ai.RoleSystem, ai.RoleDeveloper:
		return RoleSystem
	default:
		return RoleUser
	}
}
