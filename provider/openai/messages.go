package openai

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	ai "github.com/mwhitford/manifold"
)

// convertHistory translates the conversation item sequence into chat
// completion message params. Consecutive function calls merge into one
// assistant message carrying tool_calls; each output becomes a tool
// message referencing its call id.
func convertHistory(history ai.History) ([]openai.ChatCompletionMessageParamUnion, error) {
	var result []openai.ChatCompletionMessageParamUnion

	i := 0
	for i < len(history) {
		switch item := history[i].(type) {
		case ai.Message:
			msg, err := convertMessage(item)
			if err != nil {
				return nil, err
			}
			if msg != nil {
				result = append(result, *msg)
			}
			i++

		case ai.Thinking:
			// The chat completions API has no reasoning slot; the trace is
			// carried as assistant text so the model keeps its context.
			if item.Content != "" {
				result = append(result, openai.AssistantMessage(item.Content))
			}
			i++

		case ai.FunctionCall:
			var toolCalls []openai.ChatCompletionMessageToolCallParam
			for i < len(history) {
				call, ok := history[i].(ai.FunctionCall)
				if !ok {
					break
				}
				toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ResolvedCallID(),
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
				i++
			}
			result = append(result, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					ToolCalls: toolCalls,
				},
			})

		case ai.FunctionCallOutput:
			result = append(result, openai.ToolMessage(item.Output, item.CallID))
			i++

		default:
			i++
		}
	}

	return result, nil
}

func convertMessage(msg ai.Message) (*openai.ChatCompletionMessageParamUnion, error) {
	switch msg.Role {
	case ai.RoleSystem, ai.RoleDeveloper:
		if msg.Content == "" {
			return nil, nil
		}
		m := openai.SystemMessage(msg.Content)
		return &m, nil

	case ai.RoleAssistant:
		if msg.Content == "" {
			return nil, nil
		}
		m := openai.AssistantMessage(msg.Content)
		return &m, nil

	default:
		if msg.HasParts() {
			contentParts, err := convertParts(msg.Parts)
			if err != nil {
				return nil, err
			}
			if len(contentParts) == 0 {
				return nil, nil
			}
			return &openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: contentParts,
					},
				},
			}, nil
		}
		if msg.Content == "" {
			return nil, nil
		}
		m := openai.UserMessage(msg.Content)
		return &m, nil
	}
}

func convertParts(parts []ai.ContentPart) ([]openai.ChatCompletionContentPartUnionParam, error) {
	var result []openai.ChatCompletionContentPartUnionParam
	for _, part := range parts {
		switch part.Type {
		case ai.ContentPartTypeText:
			if part.Text != "" {
				result = append(result, openai.TextContentPart(part.Text))
			}
		case ai.ContentPartTypeImage:
			var imageURL string
			if part.Base64 != "" {
				mimeType := part.MimeType
				if mimeType == "" {
					mimeType = "image/jpeg"
				}
				imageURL = fmt.Sprintf("data:%s;base64,%s", mimeType, part.Base64)
			} else if part.ImageURL != "" {
				// HTTP URLs are fetched client-side and inlined; OpenAI's
				// servers cannot reach every origin.
				if strings.HasPrefix(part.ImageURL, "http://") || strings.HasPrefix(part.ImageURL, "https://") {
					data, mimeType, err := fetchImage(part.ImageURL)
					if err != nil {
						return nil, err
					}
					if part.MimeType != "" {
						mimeType = part.MimeType
					}
					imageURL = fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
				} else {
					imageURL = part.ImageURL
				}
			}
			if imageURL != "" {
				result = append(result, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: imageURL,
				}))
			}
		}
	}
	return result, nil
}

func fetchImage(url string) ([]byte, string, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, "", err
	}
	// Many servers reject requests without a User-Agent.
	req.Header.Set("User-Agent", "manifold/1.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = inferMimeType(url)
	}
	return data, mimeType, nil
}

func inferMimeType(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
