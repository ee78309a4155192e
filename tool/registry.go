package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	ai "github.com/mwhitford/manifold"
)

// Registry manages registered tools by name.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Func
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Func),
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name is already registered.
func (r *Registry) Register(f *Func) error {
	if f == nil || f.Name == "" {
		return fmt.Errorf("tool: registration requires a name")
	}
	if f.Handler == nil {
		return fmt.Errorf("tool: %s has no handler", f.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[f.Name]; exists {
		return &ErrToolAlreadyRegistered{Name: f.Name}
	}
	r.tools[f.Name] = f
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(f *Func) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Add registers one or more tools, panicking on error.
// Returns the registry for fluent chaining.
func (r *Registry) Add(funcs ...*Func) *Registry {
	for _, f := range funcs {
		r.MustRegister(f)
	}
	return r
}

// Unregister removes a tool from the registry.
// It is a no-op if the tool is not registered.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get retrieves a tool by name.
// Returns the tool and true if found, or nil and false if not found.
func (r *Registry) Get(name string) (*Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.tools[name]
	return f, ok
}

// Definitions returns the wire-facing definitions of all registered tools.
// This is what gets passed to the provider with each request.
func (r *Registry) Definitions() []ai.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ai.Tool, 0, len(r.tools))
	for _, f := range r.tools {
		defs = append(defs, f.Definition())
	}
	return defs
}

// Names returns the names of all registered tools.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Bind parses and validates raw call arguments against a tool's declared
// parameters. Unknown arguments are dropped, declared arguments are coerced
// to their declared types, defaults fill in missing optional parameters, and
// a missing required parameter is an error. Binding happens before the
// handler runs, so a handler never sees malformed arguments.
func (f *Func) Bind(raw string) (map[string]any, error) {
	if raw == "" {
		raw = "{}"
	}
	var supplied map[string]any
	if err := json.Unmarshal([]byte(raw), &supplied); err != nil {
		return nil, fmt.Errorf("tool: %s: malformed arguments: %w", f.Name, err)
	}

	// Typed tools carry a reflected schema and skip declarative coercion.
	if f.rawSchema != nil {
		return supplied, nil
	}

	bound := make(map[string]any, len(f.Params))
	for _, p := range f.Params {
		v, ok := supplied[p.Name]
		if !ok || v == nil {
			if p.Default != nil {
				bound[p.Name] = p.Default
				continue
			}
			if p.Required {
				return nil, &ErrMissingParam{Tool: f.Name, Param: p.Name}
			}
			continue
		}
		coerced, err := Coerce(v, p.Type)
		if err != nil {
			return nil, &ErrInvalidParam{Tool: f.Name, Param: p.Name, Err: err}
		}
		bound[p.Name] = coerced
	}
	return bound, nil
}

// RegisterTyped registers a tool whose arguments unmarshal directly into T.
// The parameter schema is reflected from T's struct tags.
//
// Example:
//
//	type SearchArgs struct {
//	    Query string `json:"query" desc:"Search query" required:"true"`
//	}
//
//	tool.RegisterTyped(registry, "search", "Search the web",
//	    func(ctx context.Context, args SearchArgs) (string, error) {
//	        return doSearch(args.Query), nil
//	    },
//	)
func RegisterTyped[T any](r *Registry, name, description string, fn TypedHandler[T]) error {
	schema, err := SchemaFor[T]()
	if err != nil {
		return err
	}

	handler := func(ctx context.Context, inv Invocation) (string, error) {
		data, err := json.Marshal(inv.Args)
		if err != nil {
			return "", err
		}
		var args T
		if err := json.Unmarshal(data, &args); err != nil {
			return "", err
		}
		return fn(ctx, args)
	}

	return r.Register(&Func{
		Name:         name,
		Description:  description,
		Handler:      handler,
		AllowSummary: true,
		rawSchema:    schema,
	})
}

// MustRegisterTyped is like RegisterTyped but panics on error.
func MustRegisterTyped[T any](r *Registry, name, description string, fn TypedHandler[T]) {
	if err := RegisterTyped(r, name, description, fn); err != nil {
		panic(err)
	}
}
