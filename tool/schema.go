package tool

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

type schemaProperty struct {
	Type        string                     `json:"type"`
	Description string                     `json:"description,omitempty"`
	Enum        []string                   `json:"enum,omitempty"`
	Items       *schemaProperty            `json:"items,omitempty"`
	Properties  map[string]*schemaProperty `json:"properties,omitempty"`
	Required    []string                   `json:"required,omitempty"`
}

// SchemaFor generates a JSON Schema from struct type T.
// Field names come from json tags; desc, required, and enum tags annotate
// the generated properties.
func SchemaFor[T any]() (json.RawMessage, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool: schema requires a struct type, got %v", t)
	}

	props, required := structSchema(t)
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return json.Marshal(schema)
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor[T any]() json.RawMessage {
	schema, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return schema
}

func structSchema(t reflect.Type) (map[string]*schemaProperty, []string) {
	props := make(map[string]*schemaProperty, t.NumField())
	var required []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := strings.Split(jsonTag, ",")[0]
		if name == "" {
			name = field.Name
		}

		prop := fieldSchema(field.Type)
		if desc := field.Tag.Get("desc"); desc != "" {
			prop.Description = desc
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			prop.Enum = strings.Split(enum, ",")
		}
		if field.Tag.Get("required") == "true" {
			required = append(required, name)
		}
		props[name] = prop
	}
	return props, required
}

func fieldSchema(t reflect.Type) *schemaProperty {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &schemaProperty{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &schemaProperty{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &schemaProperty{Type: "number"}
	case reflect.Bool:
		return &schemaProperty{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &schemaProperty{Type: "array", Items: fieldSchema(t.Elem())}
	case reflect.Struct:
		props, required := structSchema(t)
		return &schemaProperty{Type: "object", Properties: props, Required: required}
	case reflect.Map:
		return &schemaProperty{Type: "object"}
	default:
		return &schemaProperty{Type: "string"}
	}
}
