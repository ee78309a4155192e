package tool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFor(t *testing.T) {
	type address struct {
		City string `json:"city" desc:"City name"`
		Zip  string `json:"zip"`
	}

	type person struct {
		Name    string   `json:"name" desc:"Full name" required:"true"`
		Age     int      `json:"age" desc:"Age in years"`
		Score   float64  `json:"score"`
		Active  bool     `json:"active"`
		Tags    []string `json:"tags"`
		Home    address  `json:"home"`
		Color   string   `json:"color" enum:"red,green,blue"`
		private string
		Skipped string   `json:"-"`
	}

	raw, err := SchemaFor[person]()
	require.NoError(t, err)

	var schema struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	require.NoError(t, json.Unmarshal(raw, &schema))

	t.Run("object with properties per exported tagged field", func(t *testing.T) {
		assert.Equal(t, "object", schema.Type)
		assert.Contains(t, schema.Properties, "name")
		assert.Contains(t, schema.Properties, "age")
		assert.Contains(t, schema.Properties, "score")
		assert.Contains(t, schema.Properties, "active")
		assert.Contains(t, schema.Properties, "tags")
		assert.Contains(t, schema.Properties, "home")
		assert.NotContains(t, schema.Properties, "private")
		assert.NotContains(t, schema.Properties, "Skipped")
	})

	t.Run("required tag populates the required list", func(t *testing.T) {
		assert.Equal(t, []string{"name"}, schema.Required)
	})

	t.Run("kinds map to JSON Schema types", func(t *testing.T) {
		var prop struct {
			Type string `json:"type"`
		}
		for field, want := range map[string]string{
			"name":   "string",
			"age":    "integer",
			"score":  "number",
			"active": "boolean",
			"tags":   "array",
			"home":   "object",
		} {
			require.NoError(t, json.Unmarshal(schema.Properties[field], &prop), field)
			assert.Equal(t, want, prop.Type, field)
		}
	})

	t.Run("enum tag becomes an enum constraint", func(t *testing.T) {
		var prop struct {
			Enum []string `json:"enum"`
		}
		require.NoError(t, json.Unmarshal(schema.Properties["color"], &prop))
		assert.Equal(t, []string{"red", "green", "blue"}, prop.Enum)
	})

	t.Run("nested structs recurse", func(t *testing.T) {
		var prop struct {
			Properties map[string]json.RawMessage `json:"properties"`
		}
		require.NoError(t, json.Unmarshal(schema.Properties["home"], &prop))
		assert.Contains(t, prop.Properties, "city")
		assert.Contains(t, prop.Properties, "zip")
	})
}

func TestSchemaForRejectsNonStructs(t *testing.T) {
	_, err := SchemaFor[string]()
	assert.Error(t, err)

	_, err = SchemaFor[[]int]()
	assert.Error(t, err)
}
