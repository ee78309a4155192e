// Package manifold provides a unified interface for streaming LLM providers.
//
// The manifold library normalizes access to multiple model providers
// (Anthropic, OpenAI, Google) behind one streaming event protocol and one
// tool-calling contract. Callers supply a conversation history and a model
// identifier; the library selects a provider, issues the request, and yields
// a uniform sequence of events regardless of which vendor is behind the model.
//
// # Core Concepts
//
// A conversation is a [History]: an ordered sequence of items. Besides plain
// messages, a history carries [FunctionCall] / [FunctionCallOutput] pairs that
// record tool round-trips, and [Thinking] items that preserve provider
// reasoning traces for round-tripping.
//
// Providers implement the adapter contract in
// [github.com/mwhitford/manifold/provider] and emit events from the closed
// union in [github.com/mwhitford/manifold/event].
//
// # Streaming
//
// Use the [github.com/mwhitford/manifold/client] package as the entry point:
//
//	c := client.New(client.Config{
//	    APIKeys: client.APIKeys{OpenAI: os.Getenv("OPENAI_API_KEY")},
//	})
//
//	history := manifold.History{manifold.UserMessage("Hello, how are you?")}
//
//	events, err := c.Stream(ctx, "gpt-5-mini", history)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for ev := range events {
//	    if ev.Type == event.MessageDelta {
//	        fmt.Print(ev.Delta)
//	    }
//	}
//
// The stream always ends with exactly one terminal event: either
// event.StreamEnd or event.Error.
//
// # Tool Calling
//
// Tools are declared in [github.com/mwhitford/manifold/tool] with a parameter
// schema and a handler. When a model emits tool calls mid-stream, the client
// executes them, appends call/result pairs to the history, and issues the
// next provider round automatically, bounded by a configurable round limit.
//
// # Cost Accounting
//
// Token usage for every provider round flows through
// [github.com/mwhitford/manifold/cost], which prices usage against the model
// tables in [github.com/mwhitford/manifold/model] and accumulates running
// totals. Registering a global handler with event.SetHandler reroutes
// cost_update events to that handler without duplicating them.
package manifold
