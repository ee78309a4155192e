package manifold

import "encoding/json"

// Tool is the wire-facing definition of a function the model may call.
// The Parameters schema uses the OpenAI-style function-calling shape:
// {"type":"object","properties":{...},"required":[...]}. Adapters translate
// it into vendor-native schema losslessly for the primitive types.
type Tool struct {
	// Name is the unique identifier for the tool.
	Name string
	// Description explains what the tool does.
	Description string
	// Parameters is a JSON Schema object defining the function parameters.
	Parameters json.RawMessage
}

// ToolCall represents a request from the model to invoke a tool.
// It is produced by a provider adapter inside a tool_start event and
// consumed exactly once by the tool execution engine.
type ToolCall struct {
	// ID is a unique identifier for this tool call.
	ID string `json:"id"`
	// CallID matches the call to its output. Defaults to ID when empty.
	CallID string `json:"callId,omitempty"`
	// Name is the name of the tool to invoke.
	Name string `json:"name"`
	// Arguments is a JSON string containing the arguments to pass.
	// Adapters guarantee it parses as a JSON object, possibly "{}".
	Arguments string `json:"arguments"`
}

// ResolvedCallID returns CallID, falling back to ID when unset.
func (tc ToolCall) ResolvedCallID() string {
	if tc.CallID != "" {
		return tc.CallID
	}
	return tc.ID
}

// ToolResult represents the result of executing a tool call.
type ToolResult struct {
	// CallID matches the id from the corresponding ToolCall.
	CallID string `json:"callId"`
	// Name is the name of the tool that produced the result.
	Name string `json:"name,omitempty"`
	// Content is the result content to return to the model. Execution
	// failures are serialized here as {"error": "..."} rather than raised.
	Content string `json:"content"`
	// IsError indicates if the result represents an error.
	IsError bool `json:"isError,omitempty"`
}

// ToolChoice controls how the model uses tools.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide when to use tools (default).
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone disables tool use for the request.
	ToolChoiceNone ToolChoice = "none"
	// ToolChoiceRequired forces the model to use a tool.
	ToolChoiceRequired ToolChoice = "required"
)

// ErrorResult serializes an error message as a tool output payload.
// Tool failures are data the model can react to, not control flow.
func ErrorResult(msg string) string {
	data, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return `{"error":"internal error"}`
	}
	return string(data)
}
