package manifold

import "encoding/json"

// ResponseSchema requests structured JSON output conforming to a schema.
type ResponseSchema struct {
	// Name identifies the schema to the provider.
	Name string
	// Description explains the expected output.
	Description string
	// Schema is a JSON Schema object the response must conform to.
	Schema json.RawMessage
}

// RequestOptions contains the model settings for a single provider round.
type RequestOptions struct {
	Model          string
	MaxTokens      int
	Temperature    *float64
	TopP           *float64
	TopK           *int
	Stop           []string
	Seed           *int64
	ToolChoice     ToolChoice
	ResponseSchema *ResponseSchema
	// Tools holds the wire-facing tool definitions exposed to the model.
	Tools []Tool
}

// Option is a functional option for configuring provider requests.
type Option func(*RequestOptions)

// WithModel sets the model to use for the request.
func WithModel(model string) Option {
	return func(o *RequestOptions) { o.Model = model }
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(n int) Option {
	return func(o *RequestOptions) { o.MaxTokens = n }
}

// WithTemperature sets the sampling temperature (0.0 to 2.0).
func WithTemperature(t float64) Option {
	return func(o *RequestOptions) { o.Temperature = &t }
}

// WithTopP sets nucleus sampling probability mass.
func WithTopP(p float64) Option {
	return func(o *RequestOptions) { o.TopP = &p }
}

// WithTopK limits sampling to the k most likely tokens.
func WithTopK(k int) Option {
	return func(o *RequestOptions) { o.TopK = &k }
}

// WithStop sets stop sequences that end generation.
func WithStop(sequences ...string) Option {
	return func(o *RequestOptions) { o.Stop = sequences }
}

// WithSeed requests deterministic sampling where the provider supports it.
func WithSeed(seed int64) Option {
	return func(o *RequestOptions) { o.Seed = &seed }
}

// WithToolChoice controls whether the model may, must, or must not use tools.
func WithToolChoice(choice ToolChoice) Option {
	return func(o *RequestOptions) { o.ToolChoice = choice }
}

// WithResponseSchema requests structured output conforming to the schema.
func WithResponseSchema(schema *ResponseSchema) Option {
	return func(o *RequestOptions) { o.ResponseSchema = schema }
}

// WithTools sets the wire-facing tool definitions exposed to the model.
func WithTools(tools []Tool) Option {
	return func(o *RequestOptions) { o.Tools = tools }
}

// ApplyOptions applies functional options to a RequestOptions struct.
func ApplyOptions(opts ...Option) *RequestOptions {
	o := &RequestOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
