package google

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	ai "github.com/mwhitford/manifold"
	"google.golang.org/genai"
)

// convertHistory translates the conversation item sequence into genai
// contents plus a combined system instruction. Function calls become model
// contents with FunctionCall parts and outputs user contents with
// FunctionResponse parts.
func convertHistory(history ai.History) ([]*genai.Content, string, error) {
	var contents []*genai.Content
	var system []string

	for _, item := range history {
		switch it := item.(type) {
		case ai.Message:
			switch it.Role {
			case ai.RoleSystem, ai.RoleDeveloper:
				if it.Content != "" {
					system = append(system, it.Content)
				}
			case ai.RoleAssistant:
				if it.Content != "" {
					contents = append(contents, &genai.Content{
						Role:  "model",
						Parts: []*genai.Part{{Text: it.Content}},
					})
				}
			default:
				parts, err := userParts(it)
				if err != nil {
					return nil, "", err
				}
				if len(parts) > 0 {
					contents = append(contents, &genai.Content{
						Role:  "user",
						Parts: parts,
					})
				}
			}

		case ai.Thinking:
			if it.Content != "" {
				contents = append(contents, &genai.Content{
					Role:  "model",
					Parts: []*genai.Part{{Text: it.Content}},
				})
			}

		case ai.FunctionCall:
			var args map[string]any
			json.Unmarshal([]byte(it.Arguments), &args)
			contents = append(contents, &genai.Content{
				Role: "model",
				Parts: []*genai.Part{{
					FunctionCall: &genai.FunctionCall{
						ID:   it.ResolvedCallID(),
						Name: it.Name,
						Args: args,
					},
				}},
			})

		case ai.FunctionCallOutput:
			// Non-JSON output is wrapped so the response is always an object.
			var response map[string]any
			if err := json.Unmarshal([]byte(it.Output), &response); err != nil {
				response = map[string]any{"result": it.Output}
			}
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       it.CallID,
						Name:     it.Name,
						Response: response,
					},
				}},
			})
		}
	}

	return contents, strings.Join(system, "\n\n"), nil
}

func userParts(msg ai.Message) ([]*genai.Part, error) {
	if !msg.HasParts() {
		if msg.Content == "" {
			return nil, nil
		}
		return []*genai.Part{{Text: msg.Content}}, nil
	}

	var result []*genai.Part
	for _, part := range msg.Parts {
		switch part.Type {
		case ai.ContentPartTypeText:
			if part.Text != "" {
				result = append(result, &genai.Part{Text: part.Text})
			}
		case ai.ContentPartTypeImage:
			p, err := imagePart(part)
			if err != nil {
				return nil, err
			}
			if p != nil {
				result = append(result, p)
			}
		}
	}
	return result, nil
}

func imagePart(part ai.ContentPart) (*genai.Part, error) {
	if part.Base64 != "" {
		data, err := base64.StdEncoding.DecodeString(part.Base64)
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		mimeType := part.MimeType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		return &genai.Part{
			InlineData: &genai.Blob{Data: data, MIMEType: mimeType},
		}, nil
	}

	if part.ImageURL == "" {
		return nil, nil
	}

	// GCS URIs are referenced directly; everything else is fetched and
	// inlined.
	if strings.HasPrefix(part.ImageURL, "gs://") {
		mimeType := part.MimeType
		if mimeType == "" {
			mimeType = inferMimeType(part.ImageURL)
		}
		return &genai.Part{
			FileData: &genai.FileData{FileURI: part.ImageURL, MIMEType: mimeType},
		}, nil
	}

	data, mimeType, err := fetchImage(part.ImageURL)
	if err != nil {
		return nil, err
	}
	if part.MimeType != "" {
		mimeType = part.MimeType
	}
	return &genai.Part{
		InlineData: &genai.Blob{Data: data, MIMEType: mimeType},
	}, nil
}

func fetchImage(url string) ([]byte, string, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, "", err
	}
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

// BlockedError indicates the request was blocked by content filtering.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("request blocked: %s", e.Reason)
}
