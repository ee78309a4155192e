package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(ctx context.Context, inv Invocation) (string, error) {
	return "ok", nil
}

func TestRegistryRegister(t *testing.T) {
	t.Run("registers and retrieves a tool", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(New("search", "Search the web", nil, echoHandler)))

		assert.Equal(t, 1, registry.Len())
		f, ok := registry.Get("search")
		require.True(t, ok)
		assert.Equal(t, "search", f.Name)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(New("dupe", "First", nil, echoHandler)))

		err := registry.Register(New("dupe", "Second", nil, echoHandler))
		require.Error(t, err)

		var dup *ErrToolAlreadyRegistered
		assert.ErrorAs(t, err, &dup)
		assert.Equal(t, "dupe", dup.Name)
	})

	t.Run("rejects tools without a handler", func(t *testing.T) {
		registry := NewRegistry()
		err := registry.Register(&Func{Name: "broken"})
		assert.Error(t, err)
	})

	t.Run("chains Add calls", func(t *testing.T) {
		registry := NewRegistry().
			Add(New("first", "First tool", nil, echoHandler)).
			Add(New("second", "Second tool", nil, echoHandler))

		assert.Equal(t, 2, registry.Len())
		assert.Contains(t, registry.Names(), "first")
		assert.Contains(t, registry.Names(), "second")
	})

	t.Run("unregister removes a tool", func(t *testing.T) {
		registry := NewRegistry().Add(New("gone", "Temporary", nil, echoHandler))
		registry.Unregister("gone")

		_, ok := registry.Get("gone")
		assert.False(t, ok)
		assert.Equal(t, 0, registry.Len())
	})
}

func TestRegistryDefinitions(t *testing.T) {
	registry := NewRegistry().Add(New("weather", "Get weather", []Param{
		{Name: "location", Type: TypeString, Description: "City name", Required: true},
		{Name: "unit", Type: TypeString, Enum: []string{"celsius", "fahrenheit"}},
	}, echoHandler))

	defs := registry.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "weather", defs[0].Name)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(defs[0].Parameters, &schema))
	assert.Equal(t, "object", schema["type"])

	props := schema["properties"].(map[string]any)
	assert.Contains(t, props, "location")
	assert.Contains(t, props, "unit")
	assert.Equal(t, []any{"location"}, schema["required"])
}

func TestBind(t *testing.T) {
	f := New("order", "Place an order", []Param{
		{Name: "item", Type: TypeString, Required: true},
		{Name: "quantity", Type: TypeNumber, Default: float64(1)},
		{Name: "gift", Type: TypeBoolean},
	}, echoHandler)

	t.Run("binds and coerces supplied arguments", func(t *testing.T) {
		args, err := f.Bind(`{"item": "book", "quantity": "3", "gift": "yes"}`)
		require.NoError(t, err)
		assert.Equal(t, "book", args["item"])
		assert.Equal(t, float64(3), args["quantity"])
		assert.Equal(t, true, args["gift"])
	})

	t.Run("applies defaults for missing optionals", func(t *testing.T) {
		args, err := f.Bind(`{"item": "book"}`)
		require.NoError(t, err)
		assert.Equal(t, float64(1), args["quantity"])
		_, hasGift := args["gift"]
		assert.False(t, hasGift)
	})

	t.Run("errors on missing required parameter", func(t *testing.T) {
		_, err := f.Bind(`{"quantity": 2}`)
		require.Error(t, err)

		var missing *ErrMissingParam
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "item", missing.Param)
	})

	t.Run("errors on uncoercible value", func(t *testing.T) {
		_, err := f.Bind(`{"item": "book", "quantity": "lots"}`)
		require.Error(t, err)

		var invalid *ErrInvalidParam
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "quantity", invalid.Param)
	})

	t.Run("drops unknown arguments", func(t *testing.T) {
		args, err := f.Bind(`{"item": "book", "color": "red"}`)
		require.NoError(t, err)
		_, hasColor := args["color"]
		assert.False(t, hasColor)
	})

	t.Run("treats empty arguments as an empty object", func(t *testing.T) {
		_, err := f.Bind("")
		require.Error(t, err) // item is required

		var missing *ErrMissingParam
		assert.ErrorAs(t, err, &missing)
	})

	t.Run("errors on malformed JSON", func(t *testing.T) {
		_, err := f.Bind(`{not json`)
		assert.Error(t, err)
	})
}

func TestRegisterTyped(t *testing.T) {
	type searchArgs struct {
		Query string `json:"query" desc:"Search query" required:"true"`
		Limit int    `json:"limit" desc:"Max results"`
	}

	registry := NewRegistry()
	require.NoError(t, RegisterTyped(registry, "search", "Search the web",
		func(ctx context.Context, args searchArgs) (string, error) {
			return "found: " + args.Query, nil
		},
	))

	t.Run("reflects schema from struct tags", func(t *testing.T) {
		f, ok := registry.Get("search")
		require.True(t, ok)

		var schema map[string]any
		require.NoError(t, json.Unmarshal(f.Definition().Parameters, &schema))
		props := schema["properties"].(map[string]any)
		assert.Contains(t, props, "query")
		assert.Contains(t, props, "limit")
		assert.Equal(t, []any{"query"}, schema["required"])
	})

	t.Run("handler unmarshals bound arguments", func(t *testing.T) {
		f, _ := registry.Get("search")
		args, err := f.Bind(`{"query": "go generics", "limit": 5}`)
		require.NoError(t, err)

		out, err := f.Handler(context.Background(), Invocation{Args: args})
		require.NoError(t, err)
		assert.Equal(t, "found: go generics", out)
	})
}
