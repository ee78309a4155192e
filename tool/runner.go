package tool

import (
	"context"
	"fmt"
	"sync"
	"time"

	ai "github.com/mwhitford/manifold"
)

// RunningTool describes one in-flight tool call.
type RunningTool struct {
	CallID  string
	Tool    string
	Agent   string
	Args    map[string]any
	Started time.Time

	mu       sync.Mutex
	cancel   context.CancelFunc
	timedOut bool
}

// TimedOut reports whether a waiter gave up on this call.
func (rt *RunningTool) TimedOut() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.timedOut
}

func (rt *RunningTool) markTimedOut() {
	rt.mu.Lock()
	rt.timedOut = true
	rt.mu.Unlock()
}

func (rt *RunningTool) abort() {
	rt.mu.Lock()
	cancel := rt.cancel
	rt.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// completedLimit bounds how many finished results are retained for late
// waiters. Oldest results are evicted first, so retention never grows with
// process lifetime.
const completedLimit = 256

// Runner executes tool calls against a registry, tracking in-flight calls
// so they can be observed, awaited, and aborted.
// It is safe for concurrent use.
type Runner struct {
	registry *Registry

	mu           sync.Mutex
	running      map[string]*RunningTool
	completed    map[string]ai.ToolResult
	completedIDs []string
	waiters      map[string][]chan ai.ToolResult
}

// NewRunner creates a Runner over the given registry.
func NewRunner(registry *Registry) *Runner {
	return &Runner{
		registry:  registry,
		running:   make(map[string]*RunningTool),
		completed: make(map[string]ai.ToolResult),
		waiters:   make(map[string][]chan ai.ToolResult),
	}
}

// Registry returns the registry this runner executes against.
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Execute runs one tool call to completion and returns its result.
// Failures never propagate as Go errors: an unknown tool, a binding
// failure, a handler error, or a handler panic all produce a result with
// IsError set and a structured error payload as content, so the model can
// see what went wrong and recover.
func (r *Runner) Execute(ctx context.Context, call ai.ToolCall, agentID string) ai.ToolResult {
	callID := call.ResolvedCallID()

	f, ok := r.registry.Get(call.Name)
	if !ok {
		return errorResult(callID, call.Name, fmt.Sprintf("unknown tool: %s", call.Name))
	}

	args, err := f.Bind(call.Arguments)
	if err != nil {
		return errorResult(callID, call.Name, err.Error())
	}

	inv := Invocation{CallID: callID, Args: args}
	if f.InjectAgentID {
		inv.AgentID = agentID
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if f.InjectAbortSignal {
		runCtx, cancel = context.WithCancel(ctx)
		defer cancel()
	}

	rt := &RunningTool{
		CallID:  callID,
		Tool:    call.Name,
		Agent:   agentID,
		Args:    args,
		Started: time.Now(),
		cancel:  cancel,
	}
	r.mu.Lock()
	r.running[callID] = rt
	r.mu.Unlock()

	result := r.invoke(runCtx, f, inv, call.Name)
	r.complete(callID, result)
	return result
}

// invoke runs the handler with panic recovery.
func (r *Runner) invoke(ctx context.Context, f *Func, inv Invocation, name string) (result ai.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = errorResult(inv.CallID, name, fmt.Sprintf("tool panicked: %v", rec))
		}
	}()

	content, err := f.Handler(ctx, inv)
	if err != nil {
		return errorResult(inv.CallID, name, err.Error())
	}
	return ai.ToolResult{CallID: inv.CallID, Name: name, Content: content}
}

func (r *Runner) complete(callID string, result ai.ToolResult) {
	r.mu.Lock()
	delete(r.running, callID)
	r.completed[callID] = result
	r.completedIDs = append(r.completedIDs, callID)
	if len(r.completedIDs) > completedLimit {
		delete(r.completed, r.completedIDs[0])
		r.completedIDs = r.completedIDs[1:]
	}
	waiters := r.waiters[callID]
	delete(r.waiters, callID)
	r.mu.Unlock()

	for _, ch := range waiters {
		ch <- result
	}
}

// Running returns a snapshot of all in-flight tool calls.
func (r *Runner) Running() []*RunningTool {
	r.mu.Lock()
	defer r.mu.Unlock()

	tools := make([]*RunningTool, 0, len(r.running))
	for _, rt := range r.running {
		tools = append(tools, rt)
	}
	return tools
}

// WaitForTool blocks until the named call completes, the timeout elapses,
// or ctx is cancelled. On timeout the in-flight call is flagged as timed
// out but keeps running; its result stays retrievable by a later wait.
func (r *Runner) WaitForTool(ctx context.Context, callID string, timeout time.Duration) (ai.ToolResult, error) {
	r.mu.Lock()
	if result, ok := r.completed[callID]; ok {
		r.mu.Unlock()
		return result, nil
	}
	rt, inFlight := r.running[callID]
	if !inFlight {
		r.mu.Unlock()
		return ai.ToolResult{}, fmt.Errorf("tool: no call with id %s", callID)
	}
	ch := make(chan ai.ToolResult, 1)
	r.waiters[callID] = append(r.waiters[callID], ch)
	r.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-ch:
		return result, nil
	case <-timer.C:
		rt.markTimedOut()
		return ai.ToolResult{}, fmt.Errorf("tool: timed out waiting for call %s after %s", callID, timeout)
	case <-ctx.Done():
		return ai.ToolResult{}, ctx.Err()
	}
}

// AbortAgentTools cancels every in-flight call owned by the given agent
// that opted into abort via InjectAbortSignal. Returns the number of calls
// cancelled.
func (r *Runner) AbortAgentTools(agentID string) int {
	r.mu.Lock()
	var targets []*RunningTool
	for _, rt := range r.running {
		if rt.Agent == agentID {
			targets = append(targets, rt)
		}
	}
	r.mu.Unlock()

	n := 0
	for _, rt := range targets {
		rt.mu.Lock()
		hasCancel := rt.cancel != nil
		rt.mu.Unlock()
		if hasCancel {
			rt.abort()
			n++
		}
	}
	return n
}

func errorResult(callID, name, msg string) ai.ToolResult {
	return ai.ToolResult{
		CallID:  callID,
		Name:    name,
		Content: ai.ErrorResult(msg),
		IsError: true,
	}
}
