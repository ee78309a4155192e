package tool

import "context"

// Invocation carries the bound, coerced arguments of one tool call plus
// call-scoped context that must not pollute the schema exposed to the model.
type Invocation struct {
	// CallID is the tool call identifier this invocation answers.
	CallID string

	// AgentID is the calling agent's identifier. Populated only when the
	// tool declares InjectAgentID.
	AgentID string

	// Args holds the arguments after binding and type coercion, keyed by
	// parameter name. Unknown arguments have been dropped; defaults have
	// been applied.
	Args map[string]any
}

// String returns the string value of a bound argument, or "" when absent
// or of another type.
func (inv Invocation) String(name string) string {
	s, _ := inv.Args[name].(string)
	return s
}

// Float returns the numeric value of a bound argument, or 0 when absent.
func (inv Invocation) Float(name string) float64 {
	f, _ := inv.Args[name].(float64)
	return f
}

// Bool returns the boolean value of a bound argument, or false when absent.
func (inv Invocation) Bool(name string) bool {
	b, _ := inv.Args[name].(bool)
	return b
}

// Handler executes a tool invocation and returns the result content.
// The context is cancelled when the call is aborted; handlers that declare
// InjectAbortSignal should watch ctx.Done(). A returned error is converted
// into a structured error payload by the runner, never propagated upward.
type Handler func(ctx context.Context, inv Invocation) (string, error)

// TypedHandler executes a tool invocation with arguments unmarshaled into T.
type TypedHandler[T any] func(ctx context.Context, args T) (string, error)
