package tool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	ai "github.com/mwhitford/manifold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerExecute(t *testing.T) {
	t.Run("executes a registered tool", func(t *testing.T) {
		registry := NewRegistry().Add(New("greet", "Say hello", []Param{
			{Name: "name", Type: TypeString, Required: true},
		}, func(ctx context.Context, inv Invocation) (string, error) {
			return "hello " + inv.String("name"), nil
		}))
		runner := NewRunner(registry)

		result := runner.Execute(context.Background(), ai.ToolCall{
			ID: "call-1", Name: "greet", Arguments: `{"name": "world"}`,
		}, "")

		assert.False(t, result.IsError)
		assert.Equal(t, "call-1", result.CallID)
		assert.Equal(t, "hello world", result.Content)
	})

	t.Run("unknown tool produces an error result", func(t *testing.T) {
		runner := NewRunner(NewRegistry())

		result := runner.Execute(context.Background(), ai.ToolCall{
			ID: "call-2", Name: "missing", Arguments: "{}",
		}, "")

		assert.True(t, result.IsError)
		assert.Contains(t, result.Content, "unknown tool")
	})

	t.Run("binding failure produces an error result", func(t *testing.T) {
		registry := NewRegistry().Add(New("strict", "Requires input", []Param{
			{Name: "value", Type: TypeNumber, Required: true},
		}, echoHandler))
		runner := NewRunner(registry)

		result := runner.Execute(context.Background(), ai.ToolCall{
			ID: "call-3", Name: "strict", Arguments: "{}",
		}, "")

		assert.True(t, result.IsError)
		assert.Contains(t, result.Content, "value")
	})

	t.Run("handler error produces an error result", func(t *testing.T) {
		registry := NewRegistry().Add(New("fail", "Always fails", nil,
			func(ctx context.Context, inv Invocation) (string, error) {
				return "", errors.New("backend unavailable")
			}))
		runner := NewRunner(registry)

		result := runner.Execute(context.Background(), ai.ToolCall{
			ID: "call-4", Name: "fail", Arguments: "{}",
		}, "")

		assert.True(t, result.IsError)
		assert.Contains(t, result.Content, "backend unavailable")
	})

	t.Run("handler panic is recovered into an error result", func(t *testing.T) {
		registry := NewRegistry().Add(New("boom", "Panics", nil,
			func(ctx context.Context, inv Invocation) (string, error) {
				panic("exploded")
			}))
		runner := NewRunner(registry)

		result := runner.Execute(context.Background(), ai.ToolCall{
			ID: "call-5", Name: "boom", Arguments: "{}",
		}, "")

		assert.True(t, result.IsError)
		assert.Contains(t, result.Content, "exploded")
	})

	t.Run("injects agent id when requested", func(t *testing.T) {
		f := New("who", "Reports caller", nil,
			func(ctx context.Context, inv Invocation) (string, error) {
				return inv.AgentID, nil
			})
		f.InjectAgentID = true
		runner := NewRunner(NewRegistry().Add(f))

		result := runner.Execute(context.Background(), ai.ToolCall{
			ID: "call-6", Name: "who", Arguments: "{}",
		}, "agent-7")

		assert.Equal(t, "agent-7", result.Content)
	})
}

func TestWaitForTool(t *testing.T) {
	t.Run("returns a completed result immediately", func(t *testing.T) {
		registry := NewRegistry().Add(New("quick", "Fast tool", nil, echoHandler))
		runner := NewRunner(registry)

		runner.Execute(context.Background(), ai.ToolCall{ID: "call-1", Name: "quick", Arguments: "{}"}, "")

		result, err := runner.WaitForTool(context.Background(), "call-1", time.Second)
		require.NoError(t, err)
		assert.Equal(t, "ok", result.Content)
	})

	t.Run("errors for an unknown call id", func(t *testing.T) {
		runner := NewRunner(NewRegistry())

		_, err := runner.WaitForTool(context.Background(), "never-started", time.Second)
		assert.Error(t, err)
	})

	t.Run("waits for an in-flight call", func(t *testing.T) {
		release := make(chan struct{})
		registry := NewRegistry().Add(New("slow", "Blocks until released", nil,
			func(ctx context.Context, inv Invocation) (string, error) {
				<-release
				return "done", nil
			}))
		runner := NewRunner(registry)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			runner.Execute(context.Background(), ai.ToolCall{ID: "call-2", Name: "slow", Arguments: "{}"}, "")
		}()

		// Wait until the call shows up as running.
		require.Eventually(t, func() bool {
			return len(runner.Running()) == 1
		}, time.Second, 5*time.Millisecond)

		close(release)
		result, err := runner.WaitForTool(context.Background(), "call-2", time.Second)
		require.NoError(t, err)
		assert.Equal(t, "done", result.Content)
		wg.Wait()
	})

	t.Run("timeout leaves the call running and flags it", func(t *testing.T) {
		release := make(chan struct{})
		registry := NewRegistry().Add(New("stuck", "Blocks until released", nil,
			func(ctx context.Context, inv Invocation) (string, error) {
				<-release
				return "eventually", nil
			}))
		runner := NewRunner(registry)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			runner.Execute(context.Background(), ai.ToolCall{ID: "call-3", Name: "stuck", Arguments: "{}"}, "")
		}()

		require.Eventually(t, func() bool {
			return len(runner.Running()) == 1
		}, time.Second, 5*time.Millisecond)

		_, err := runner.WaitForTool(context.Background(), "call-3", 10*time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timed out")

		running := runner.Running()
		require.Len(t, running, 1)
		assert.True(t, running[0].TimedOut())

		// The result is still retrievable after the tool finishes.
		close(release)
		wg.Wait()
		result, err := runner.WaitForTool(context.Background(), "call-3", time.Second)
		require.NoError(t, err)
		assert.Equal(t, "eventually", result.Content)
	})
}

func TestAbortAgentTools(t *testing.T) {
	t.Run("cancels only abortable calls of the agent", func(t *testing.T) {
		abortable := New("watch", "Runs until cancelled", nil,
			func(ctx context.Context, inv Invocation) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			})
		abortable.InjectAbortSignal = true

		release := make(chan struct{})
		plain := New("fixed", "Ignores cancellation", nil,
			func(ctx context.Context, inv Invocation) (string, error) {
				<-release
				return "ok", nil
			})

		runner := NewRunner(NewRegistry().Add(abortable, plain))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			runner.Execute(context.Background(), ai.ToolCall{ID: "call-a", Name: "watch", Arguments: "{}"}, "agent-1")
		}()
		go func() {
			defer wg.Done()
			runner.Execute(context.Background(), ai.ToolCall{ID: "call-b", Name: "fixed", Arguments: "{}"}, "agent-1")
		}()

		require.Eventually(t, func() bool {
			return len(runner.Running()) == 2
		}, time.Second, 5*time.Millisecond)

		n := runner.AbortAgentTools("agent-1")
		assert.Equal(t, 1, n)

		close(release)
		wg.Wait()

		result, err := runner.WaitForTool(context.Background(), "call-a", time.Second)
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("returns zero when the agent has no calls", func(t *testing.T) {
		runner := NewRunner(NewRegistry())
		assert.Equal(t, 0, runner.AbortAgentTools("nobody"))
	})
}

func TestCompletedResultRetention(t *testing.T) {
	registry := NewRegistry().Add(New("ping", "Replies", nil,
		func(ctx context.Context, inv Invocation) (string, error) {
			return "pong", nil
		}))
	runner := NewRunner(registry)

	for i := 0; i < completedLimit+10; i++ {
		runner.Execute(context.Background(), ai.ToolCall{
			ID: fmt.Sprintf("call-%d", i), Name: "ping", Arguments: "{}",
		}, "")
	}

	// The oldest results are evicted once the retention bound is exceeded.
	_, err := runner.WaitForTool(context.Background(), "call-0", 10*time.Millisecond)
	assert.Error(t, err)

	// Recent results stay retrievable for late waiters.
	result, err := runner.WaitForTool(context.Background(), fmt.Sprintf("call-%d", completedLimit+9), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "pong", result.Content)
}
