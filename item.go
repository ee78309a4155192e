package manifold

import "github.com/google/uuid"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleAssistant Role = "assistant"
)

// ItemType identifies the variant of a history item.
type ItemType string

const (
	ItemMessage            ItemType = "message"
	ItemThinking           ItemType = "thinking"
	ItemFunctionCall       ItemType = "function_call"
	ItemFunctionCallOutput ItemType = "function_call_output"
)

// Item is one entry in a conversation history.
type Item interface {
	// ItemType identifies the concrete variant.
	ItemType() ItemType
}

// ContentPartType represents the type of content in a multimodal message part.
type ContentPartType string

const (
	ContentPartTypeText  ContentPartType = "text"
	ContentPartTypeImage ContentPartType = "image"
	ContentPartTypeFile  ContentPartType = "file"
)

// ContentPart represents a single part of multimodal content.
type ContentPart struct {
	// Type indicates the content type: "text", "image" or "file".
	Type ContentPartType `json:"type"`
	// Text contains the text content. Only used when Type is "text".
	Text string `json:"text,omitempty"`
	// ImageURL contains a URL or data URI to an image.
	ImageURL string `json:"imageUrl,omitempty"`
	// Base64 contains base64-encoded data for image and file parts.
	// Mutually exclusive with ImageURL.
	Base64 string `json:"base64,omitempty"`
	// MimeType specifies the payload format (e.g. "image/png", "application/pdf").
	// Required when using Base64.
	MimeType string `json:"mimeType,omitempty"`
	// FileName is an optional name for file parts.
	FileName string `json:"fileName,omitempty"`
}

// NewTextPart creates a text content part.
func NewTextPart(text string) ContentPart {
	return ContentPart{Type: ContentPartTypeText, Text: text}
}

// NewImageURLPart creates an image content part from a URL or data URI.
func NewImageURLPart(url string) ContentPart {
	return ContentPart{Type: ContentPartTypeImage, ImageURL: url}
}

// NewImageBase64Part creates an image content part from base64 data.
func NewImageBase64Part(base64Data, mimeType string) ContentPart {
	return ContentPart{Type: ContentPartTypeImage, Base64: base64Data, MimeType: mimeType}
}

// NewFilePart creates a file content part from base64 data.
func NewFilePart(name, base64Data, mimeType string) ContentPart {
	return ContentPart{Type: ContentPartTypeFile, FileName: name, Base64: base64Data, MimeType: mimeType}
}

// Message is a plain conversation message from a user, the system, or the
// assistant. Content holds text; Parts holds ordered multimodal content and
// takes precedence over Content when populated.
type Message struct {
	// ID is an optional unique identifier, used for event correlation.
	ID      string        `json:"id,omitempty"`
	Role    Role          `json:"role"`
	Content string        `json:"content,omitempty"`
	Parts   []ContentPart `json:"parts,omitempty"`
	// Status is an optional provider-reported message status
	// (e.g. "completed", "incomplete").
	Status string `json:"status,omitempty"`
}

// ItemType identifies the message variant.
func (Message) ItemType() ItemType { return ItemMessage }

// HasParts returns true if the message has multimodal content parts.
func (m Message) HasParts() bool { return len(m.Parts) > 0 }

// Thinking is an assistant-only reasoning trace. The Signature is an opaque
// provider value that must be round-tripped unchanged on subsequent rounds.
type Thinking struct {
	Content   string `json:"content"`
	Signature string `json:"signature,omitempty"`
}

// ItemType identifies the thinking variant.
func (Thinking) ItemType() ItemType { return ItemThinking }

// FunctionCall records a tool invocation requested by the assistant.
// Every FunctionCall in a well-formed history is immediately followed by a
// FunctionCallOutput with the same call id.
type FunctionCall struct {
	ID string `json:"id"`
	// CallID matches the call to its output. Defaults to ID when empty.
	CallID    string `json:"callId,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ItemType identifies the function call variant.
func (FunctionCall) ItemType() ItemType { return ItemFunctionCall }

// ResolvedCallID returns CallID, falling back to ID when unset.
func (f FunctionCall) ResolvedCallID() string {
	if f.CallID != "" {
		return f.CallID
	}
	return f.ID
}

// FunctionCallOutput records the result of executing a FunctionCall.
type FunctionCallOutput struct {
	CallID string `json:"callId"`
	Name   string `json:"name"`
	Output string `json:"output"`
}

// ItemType identifies the function call output variant.
func (FunctionCallOutput) ItemType() ItemType { return ItemFunctionCallOutput }

// History is an ordered, append-only sequence of conversation items.
// During a single request the orchestration loop owns the history
// exclusively; callers should not mutate a history they have handed off.
type History []Item

// Clone returns a shallow copy of the history. Items are value types, so the
// copy is safe to append to without affecting the original.
func (h History) Clone() History {
	out := make(History, len(h))
	copy(out, h)
	return out
}

// Append returns the history extended with the given items.
func (h History) Append(items ...Item) History {
	return append(h, items...)
}

// LastMessage returns the most recent Message item, or false when the
// history contains none.
func (h History) LastMessage() (Message, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		if m, ok := h[i].(Message); ok {
			return m, true
		}
	}
	return Message{}, false
}

// Paired reports whether every FunctionCall in the history is immediately
// followed by a FunctionCallOutput sharing its call id.
func (h History) Paired() bool {
	for i, item := range h {
		call, ok := item.(FunctionCall)
		if !ok {
			continue
		}
		if i+1 >= len(h) {
			return false
		}
		out, ok := h[i+1].(FunctionCallOutput)
		if !ok || out.CallID != call.ResolvedCallID() {
			return false
		}
	}
	return true
}

// UserMessage creates a user message item.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// SystemMessage creates a system message item.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// AssistantMessage creates an assistant message item.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// GenerateMessageID creates a unique message identifier.
func GenerateMessageID() string {
	return "msg-" + uuid.New().String()
}

// GenerateCallID creates a unique tool call identifier.
func GenerateCallID() string {
	return "call-" + uuid.New().String()
}
