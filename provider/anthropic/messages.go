package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	ai "github.com/mwhitford/manifold"
)

// convertHistory translates the conversation item sequence into Anthropic
// message params plus the system blocks. Consecutive function calls become
// one assistant message of tool_use blocks and consecutive outputs one user
// message of tool_result blocks, preserving the call/result adjacency the
// API requires.
func convertHistory(history ai.History) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var result []anthropic.MessageParam
	var system []anthropic.TextBlockParam

	i := 0
	for i < len(history) {
		switch item := history[i].(type) {
		case ai.Message:
			if msg, ok := convertMessage(item, &system); ok {
				result = append(result, msg)
			}
			i++

		case ai.Thinking:
			result = append(result, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleAssistant,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewThinkingBlock(item.Signature, item.Content),
				},
			})
			i++

		case ai.FunctionCall:
			var blocks []anthropic.ContentBlockParamUnion
			for i < len(history) {
				call, ok := history[i].(ai.FunctionCall)
				if !ok {
					break
				}
				var input any
				json.Unmarshal([]byte(call.Arguments), &input)
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ResolvedCallID(), input, call.Name))
				i++
			}
			result = append(result, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleAssistant,
				Content: blocks,
			})

		case ai.FunctionCallOutput:
			var blocks []anthropic.ContentBlockParamUnion
			for i < len(history) {
				out, ok := history[i].(ai.FunctionCallOutput)
				if !ok {
					break
				}
				blocks = append(blocks, anthropic.NewToolResultBlock(out.CallID, out.Output, isErrorOutput(out.Output)))
				i++
			}
			result = append(result, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleUser,
				Content: blocks,
			})

		default:
			i++
		}
	}

	return result, system
}

func convertMessage(msg ai.Message, system *[]anthropic.TextBlockParam) (anthropic.MessageParam, bool) {
	switch msg.Role {
	case ai.RoleSystem, ai.RoleDeveloper:
		// Empty text blocks are rejected by the API.
		if msg.Content != "" {
			*system = append(*system, anthropic.TextBlockParam{Text: msg.Content})
		}
		return anthropic.MessageParam{}, false

	case ai.RoleAssistant:
		if msg.Content == "" {
			return anthropic.MessageParam{}, false
		}
		return anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)), true

	default:
		if msg.HasParts() {
			blocks := convertParts(msg.Parts)
			if len(blocks) == 0 {
				return anthropic.MessageParam{}, false
			}
			return anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleUser,
				Content: blocks,
			}, true
		}
		if msg.Content == "" {
			return anthropic.MessageParam{}, false
		}
		return anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)), true
	}
}

func convertParts(parts []ai.ContentPart) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	for _, part := range parts {
		switch part.Type {
		case ai.ContentPartTypeText:
			if part.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		case ai.ContentPartTypeImage:
			if part.ImageURL != "" {
				blocks = append(blocks, anthropic.NewImageBlock(anthropic.URLImageSourceParam{
					URL: part.ImageURL,
				}))
			} else if part.Base64 != "" {
				mediaType := part.MimeType
				if mediaType == "" {
					mediaType = "image/jpeg"
				}
				blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, part.Base64))
			}
		}
	}
	return blocks
}

// isErrorOutput recognizes the structured error payload the tool engine
// produces for failed calls.
func isErrorOutput(output string) bool {
	return strings.HasPrefix(output, `{"error"`)
}
