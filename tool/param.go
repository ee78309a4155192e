package tool

import (
	"encoding/json"

	ai "github.com/mwhitford/manifold"
)

// ParamType is the closed set of declarable parameter types.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeObject  ParamType = "object"
	TypeArray   ParamType = "array"
	TypeNull    ParamType = "null"
)

// Param declares one tool parameter.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	// Default is applied when the model omits an optional parameter.
	Default any
	// Enum restricts string parameters to the listed values.
	Enum []string
	// Items declares the element type of array parameters.
	Items *Param
	// Properties declares the fields of object parameters.
	Properties []Param
	// Minimum and Maximum bound numeric parameters.
	Minimum *float64
	Maximum *float64
}

// Func pairs a declarative parameter schema with an executable handler and
// behavior flags. Funcs are constructed once at definition time and are
// immutable afterwards; every round of a request references the same Func.
type Func struct {
	Name        string
	Description string
	Params      []Param

	Handler Handler

	// InjectAgentID requests the calling agent's id in Invocation.AgentID.
	InjectAgentID bool
	// InjectAbortSignal requests per-call cancellation: the runner derives
	// a cancellable context for the call and registers it for abort.
	InjectAbortSignal bool
	// AllowSummary permits the post-processor to summarize oversized
	// output. When false, oversized output is truncated deterministically.
	AllowSummary bool
	// MaxOutputSize overrides the post-processor's global size threshold
	// for this tool. Zero means use the global default.
	MaxOutputSize int

	// rawSchema is set for tools registered from a typed handler, where the
	// schema is reflected from the argument struct instead of Params.
	rawSchema json.RawMessage
}

// New creates a Func with summarization allowed, matching the default
// post-processing behavior.
func New(name, description string, params []Param, handler Handler) *Func {
	return &Func{
		Name:         name,
		Description:  description,
		Params:       params,
		Handler:      handler,
		AllowSummary: true,
	}
}

// NewRaw creates a Func whose parameter schema is supplied directly as a
// JSON Schema object instead of being declared through Params. Arguments
// bind without coercion and reach the handler as decoded.
func NewRaw(name, description string, schema json.RawMessage, handler Handler) *Func {
	return &Func{
		Name:         name,
		Description:  description,
		Handler:      handler,
		AllowSummary: true,
		rawSchema:    schema,
	}
}

// Definition returns the wire-facing tool definition with an OpenAI-style
// function-calling parameter schema.
func (f *Func) Definition() ai.Tool {
	params := f.rawSchema
	if params == nil {
		params = buildSchema(f.Params)
	}
	return ai.Tool{
		Name:        f.Name,
		Description: f.Description,
		Parameters:  params,
	}
}

func buildSchema(params []Param) json.RawMessage {
	properties := make(map[string]any, len(params))
	var required []string
	for _, p := range params {
		properties[p.Name] = p.schema()
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return data
}

func (p Param) schema() map[string]any {
	s := map[string]any{"type": string(p.Type)}
	if p.Description != "" {
		s["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		s["enum"] = p.Enum
	}
	if p.Default != nil {
		s["default"] = p.Default
	}
	if p.Minimum != nil {
		s["minimum"] = *p.Minimum
	}
	if p.Maximum != nil {
		s["maximum"] = *p.Maximum
	}
	if p.Type == TypeArray && p.Items != nil {
		s["items"] = p.Items.schema()
	}
	if p.Type == TypeObject && len(p.Properties) > 0 {
		props := make(map[string]any, len(p.Properties))
		var required []string
		for _, child := range p.Properties {
			props[child.Name] = child.schema()
			if child.Required {
				required = append(required, child.Name)
			}
		}
		s["properties"] = props
		if len(required) > 0 {
			s["required"] = required
		}
	}
	return s
}
