package anthropic

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	ai "github.com/mwhitford/manifold"
)

// jsonResponseToolName is the synthetic tool used to force structured
// JSON output, since the Messages API has no native response-schema field.
const jsonResponseToolName = "__manifold_json_response__"

func convertTools(tools []ai.Tool) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		result[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: toInputSchema(t.Parameters),
			},
		}
	}
	return result
}

// toInputSchema splits an OpenAI-style parameter schema into the properties
// and required list the Anthropic tool shape wants.
func toInputSchema(parameters json.RawMessage) anthropic.ToolInputSchemaParam {
	var schema map[string]any
	if len(parameters) > 0 {
		json.Unmarshal(parameters, &schema)
	}

	var required []string
	if reqVal, ok := schema["required"].([]any); ok {
		for _, r := range reqVal {
			if s, ok := r.(string); ok {
				required = append(required, s)
			}
		}
	}

	return anthropic.ToolInputSchemaParam{
		Properties: schema["properties"],
		Required:   required,
	}
}

func convertToolChoice(choice ai.ToolChoice) anthropic.ToolChoiceUnionParam {
	switch choice {
	case ai.ToolChoiceNone:
		return anthropic.ToolChoiceUnionParam{
			OfNone: &anthropic.ToolChoiceNoneParam{},
		}
	case ai.ToolChoiceRequired:
		return anthropic.ToolChoiceUnionParam{
			OfAny: &anthropic.ToolChoiceAnyParam{},
		}
	default:
		return anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{},
		}
	}
}

func buildJSONTool(rs *ai.ResponseSchema) (anthropic.ToolUnionParam, anthropic.ToolChoiceUnionParam) {
	schema := json.RawMessage(`{"type":"object","additionalProperties":true}`)
	if rs != nil && len(rs.Schema) > 0 {
		schema = rs.Schema
	}

	description := "Output the response as structured JSON"
	if rs != nil && rs.Description != "" {
		description = rs.Description
	}

	tool := anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        jsonResponseToolName,
			Description: anthropic.String(description),
			InputSchema: toInputSchema(schema),
		},
	}
	toolChoice := anthropic.ToolChoiceUnionParam{
		OfTool: &anthropic.ToolChoiceToolParam{
			Name: jsonResponseToolName,
		},
	}
	return tool, toolChoice
}
