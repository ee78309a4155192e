package client

import (
	"context"
	"sort"
	"sync"
	"testing"

	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/event"
	"github.com/mwhitford/manifold/model"
	"github.com/mwhitford/manifold/provider"
	"github.com/mwhitford/manifold/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockModel = "mock-chat"

func init() {
	model.Register(model.Info{
		ID:       mockModel,
		Provider: ai.ProviderMock,
		Kind:     model.KindChat,
		Chat:     model.ChatPricing{InputPerMillion: 1.00, OutputPerMillion: 2.00},
	})
}

// scriptedRound describes what the mock provider streams for one round.
type scriptedRound struct {
	text   string
	calls  []ai.ToolCall
	errMsg string
	usage  *ai.ModelUsage
}

// mockProvider plays back scripted rounds and records every request it
// receives. The last round repeats if more rounds are requested than
// scripted.
type mockProvider struct {
	mu       sync.Mutex
	rounds   []scriptedRound
	requests []provider.Request
}

func (m *mockProvider) ID() ai.ProviderID { return ai.ProviderMock }

func (m *mockProvider) CreateResponseStream(ctx context.Context, req provider.Request) (<-chan event.Event, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	idx := len(m.requests) - 1
	if idx >= len(m.rounds) {
		idx = len(m.rounds) - 1
	}
	round := m.rounds[idx]
	m.mu.Unlock()

	ch := event.NewChannel()
	go func() {
		defer close(ch)

		messageID := ai.GenerateMessageID()
		event.Emit(ch, event.Event{Type: event.MessageStart, MessageID: messageID})

		order := 0
		for _, r := range round.text {
			order++
			event.Emit(ch, event.Event{Type: event.MessageDelta, MessageID: messageID, Order: order, Delta: string(r)})
		}

		if round.errMsg != "" {
			event.Emit(ch, event.Event{Type: event.MessageComplete, MessageID: messageID, Content: round.text})
			event.Emit(ch, event.Event{Type: event.Error, Err: round.errMsg})
			return
		}

		event.Emit(ch, event.Event{Type: event.MessageComplete, MessageID: messageID, Content: round.text})
		if len(round.calls) > 0 {
			event.Emit(ch, event.Event{Type: event.ToolStart, ToolCalls: round.calls})
		}
		if round.usage != nil {
			event.Emit(ch, event.Event{Type: event.CostUpdate, Usage: round.usage})
		}
		event.Emit(ch, event.Event{Type: event.StreamEnd})
	}()
	return ch, nil
}

func (m *mockProvider) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockProvider) request(i int) provider.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[i]
}

func withMock(t *testing.T, m provider.Provider) {
	t.Helper()
	provider.Register(m)
	t.Cleanup(func() { provider.Unregister(ai.ProviderMock) })
}

func drain(t *testing.T, stream <-chan event.Event) []event.Event {
	t.Helper()
	var out []event.Event
	for ev := range stream {
		out = append(out, ev)
	}
	return out
}

func eventTypes(evs []event.Event) []event.Type {
	types := make([]event.Type, len(evs))
	for i, ev := range evs {
		types[i] = ev.Type
	}
	return types
}

func TestStreamPlainResponse(t *testing.T) {
	mock := &mockProvider{rounds: []scriptedRound{{text: "hi"}}}
	withMock(t, mock)

	c := New(Config{})
	stream, err := c.Stream(context.Background(), mockModel, ai.History{ai.UserMessage("hello")})
	require.NoError(t, err)

	evs := drain(t, stream)
	require.NotEmpty(t, evs)

	t.Run("events arrive in protocol order", func(t *testing.T) {
		assert.Equal(t, []event.Type{
			event.MessageStart,
			event.MessageDelta,
			event.MessageDelta,
			event.MessageComplete,
			event.StreamEnd,
		}, eventTypes(evs))
	})

	t.Run("deltas reassemble to the complete content", func(t *testing.T) {
		var text string
		for _, ev := range evs {
			if ev.Type == event.MessageDelta {
				text += ev.Delta
			}
		}
		assert.Equal(t, "hi", text)
	})

	t.Run("delta order counters are sequential", func(t *testing.T) {
		want := 1
		for _, ev := range evs {
			if ev.Type == event.MessageDelta {
				assert.Equal(t, want, ev.Order)
				want++
			}
		}
	})

	t.Run("exactly one terminal event, and it is last", func(t *testing.T) {
		terminals := 0
		for _, ev := range evs {
			if ev.Type.Terminal() {
				terminals++
			}
		}
		assert.Equal(t, 1, terminals)
		assert.True(t, evs[len(evs)-1].Type.Terminal())
	})
}

func TestStreamToolRound(t *testing.T) {
	mock := &mockProvider{rounds: []scriptedRound{
		{calls: []ai.ToolCall{{ID: "call-1", Name: "lookup", Arguments: `{"key": "a"}`}}},
		{text: "the value is 7"},
	}}
	withMock(t, mock)

	c := New(Config{})
	c.Registry().MustRegister(tool.New("lookup", "Look up a value", []tool.Param{
		{Name: "key", Type: tool.TypeString, Required: true},
	}, func(ctx context.Context, inv tool.Invocation) (string, error) {
		return "7", nil
	}))

	stream, err := c.Stream(context.Background(), mockModel, ai.History{ai.UserMessage("what is a?")})
	require.NoError(t, err)
	evs := drain(t, stream)

	t.Run("tool start is relayed and tool done follows", func(t *testing.T) {
		types := eventTypes(evs)
		assert.Contains(t, types, event.ToolStart)
		assert.Contains(t, types, event.ToolDone)
	})

	t.Run("tool result carries the handler output", func(t *testing.T) {
		for _, ev := range evs {
			if ev.Type == event.ToolDone {
				require.NotNil(t, ev.ToolResult)
				assert.Equal(t, "7", ev.ToolResult.Content)
				assert.Equal(t, "call-1", ev.ToolResult.CallID)
			}
		}
	})

	t.Run("second round sees the call and its output in history", func(t *testing.T) {
		require.Equal(t, 2, mock.requestCount())
		hist := mock.request(1).History

		var call ai.FunctionCall
		var output ai.FunctionCallOutput
		foundCall, foundOutput := false, false
		for _, item := range hist {
			switch it := item.(type) {
			case ai.FunctionCall:
				call, foundCall = it, true
			case ai.FunctionCallOutput:
				output, foundOutput = it, true
			}
		}
		require.True(t, foundCall)
		require.True(t, foundOutput)
		assert.Equal(t, "lookup", call.Name)
		assert.Equal(t, call.ResolvedCallID(), output.CallID)
		assert.Equal(t, "7", output.Output)
		assert.True(t, hist.Paired())
	})

	t.Run("single terminal for the whole request", func(t *testing.T) {
		terminals := 0
		for _, ev := range evs {
			if ev.Type.Terminal() {
				terminals++
			}
		}
		assert.Equal(t, 1, terminals)
		assert.Equal(t, event.StreamEnd, evs[len(evs)-1].Type)
	})

	t.Run("tool definitions were sent to the provider", func(t *testing.T) {
		tools := mock.request(0).Options.Tools
		require.Len(t, tools, 1)
		assert.Equal(t, "lookup", tools[0].Name)
	})
}

func TestStreamParallelToolCalls(t *testing.T) {
	mock := &mockProvider{rounds: []scriptedRound{
		{calls: []ai.ToolCall{
			{ID: "call-a", Name: "echo", Arguments: `{"text": "first"}`},
			{ID: "call-b", Name: "echo", Arguments: `{"text": "second"}`},
			{ID: "call-c", Name: "echo", Arguments: `{"text": "third"}`},
		}},
		{text: "done"},
	}}
	withMock(t, mock)

	c := New(Config{})
	c.Registry().MustRegister(tool.New("echo", "Echo text", []tool.Param{
		{Name: "text", Type: tool.TypeString, Required: true},
	}, func(ctx context.Context, inv tool.Invocation) (string, error) {
		return inv.String("text"), nil
	}))

	stream, err := c.Stream(context.Background(), mockModel, ai.History{ai.UserMessage("go")})
	require.NoError(t, err)
	evs := drain(t, stream)

	t.Run("tool done events arrive in call order", func(t *testing.T) {
		var ids []string
		for _, ev := range evs {
			if ev.Type == event.ToolDone {
				ids = append(ids, ev.ToolResult.CallID)
			}
		}
		assert.Equal(t, []string{"call-a", "call-b", "call-c"}, ids)
	})

	t.Run("results stay aligned with their calls", func(t *testing.T) {
		want := map[string]string{"call-a": "first", "call-b": "second", "call-c": "third"}
		for _, ev := range evs {
			if ev.Type == event.ToolDone {
				assert.Equal(t, want[ev.ToolResult.CallID], ev.ToolResult.Content)
			}
		}
	})

	t.Run("history pairs every call with its output", func(t *testing.T) {
		require.Equal(t, 2, mock.requestCount())
		assert.True(t, mock.request(1).History.Paired())
	})
}

func TestStreamToolCallLimit(t *testing.T) {
	// Every round requests another tool call; the loop must cut it off.
	mock := &mockProvider{rounds: []scriptedRound{
		{calls: []ai.ToolCall{{ID: "call-x", Name: "again", Arguments: "{}"}}},
	}}
	withMock(t, mock)

	var executions int
	var mu sync.Mutex

	c := New(Config{})
	c.Registry().MustRegister(tool.New("again", "Never enough", nil,
		func(ctx context.Context, inv tool.Invocation) (string, error) {
			mu.Lock()
			executions++
			mu.Unlock()
			return "more", nil
		}))

	stream, err := c.Stream(context.Background(), mockModel,
		ai.History{ai.UserMessage("loop")}, WithMaxToolCalls(2))
	require.NoError(t, err)
	evs := drain(t, stream)

	t.Run("stream ends with a limit error", func(t *testing.T) {
		last := evs[len(evs)-1]
		require.Equal(t, event.Error, last.Type)
		assert.Contains(t, last.Err, "tool call limit")
	})

	t.Run("tools ran only up to the limit", func(t *testing.T) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 2, executions)
	})
}

func TestStreamWithoutToolExecution(t *testing.T) {
	mock := &mockProvider{rounds: []scriptedRound{
		{calls: []ai.ToolCall{{ID: "call-1", Name: "external", Arguments: "{}"}}},
	}}
	withMock(t, mock)

	c := New(Config{})
	stream, err := c.Stream(context.Background(), mockModel,
		ai.History{ai.UserMessage("hi")}, WithExecuteTools(false))
	require.NoError(t, err)
	evs := drain(t, stream)

	t.Run("tool start is relayed and the stream ends", func(t *testing.T) {
		types := eventTypes(evs)
		assert.Contains(t, types, event.ToolStart)
		assert.NotContains(t, types, event.ToolDone)
		assert.Equal(t, event.StreamEnd, evs[len(evs)-1].Type)
	})

	t.Run("no second round is issued", func(t *testing.T) {
		assert.Equal(t, 1, mock.requestCount())
	})
}

func TestStreamProviderError(t *testing.T) {
	mock := &mockProvider{rounds: []scriptedRound{
		{text: "partial answ", errMsg: "connection reset mid-stream"},
	}}
	withMock(t, mock)

	c := New(Config{})
	stream, err := c.Stream(context.Background(), mockModel, ai.History{ai.UserMessage("hi")})
	require.NoError(t, err)
	evs := drain(t, stream)

	t.Run("partial content is completed before the error", func(t *testing.T) {
		types := eventTypes(evs)
		completeIdx, errorIdx := -1, -1
		for i, typ := range types {
			switch typ {
			case event.MessageComplete:
				completeIdx = i
			case event.Error:
				errorIdx = i
			}
		}
		require.GreaterOrEqual(t, completeIdx, 0)
		require.GreaterOrEqual(t, errorIdx, 0)
		assert.Less(t, completeIdx, errorIdx)
		assert.Equal(t, "partial answ", evs[completeIdx].Content)
	})

	t.Run("the error is terminal", func(t *testing.T) {
		assert.Equal(t, event.Error, evs[len(evs)-1].Type)
		assert.Equal(t, 1, mock.requestCount())
	})
}

func TestStreamProcessToolCallHook(t *testing.T) {
	mock := &mockProvider{rounds: []scriptedRound{
		{calls: []ai.ToolCall{{ID: "call-1", Name: "secret", Arguments: "{}"}}},
		{text: "done"},
	}}
	withMock(t, mock)

	c := New(Config{})
	c.Registry().MustRegister(tool.New("secret", "Returns a secret", nil,
		func(ctx context.Context, inv tool.Invocation) (string, error) {
			return "hunter2", nil
		}))

	hook := func(ctx context.Context, calls []ai.ToolCall, results []ai.ToolResult) []ai.ToolResult {
		for i := range results {
			results[i].Content = "[redacted]"
		}
		return results
	}

	stream, err := c.Stream(context.Background(), mockModel,
		ai.History{ai.UserMessage("hi")}, WithProcessToolCall(hook))
	require.NoError(t, err)
	evs := drain(t, stream)

	for _, ev := range evs {
		if ev.Type == event.ToolDone {
			assert.Equal(t, "[redacted]", ev.ToolResult.Content)
		}
	}

	require.Equal(t, 2, mock.requestCount())
	for _, item := range mock.request(1).History {
		if out, ok := item.(ai.FunctionCallOutput); ok {
			assert.Equal(t, "[redacted]", out.Output)
		}
	}
}

func TestStreamCostUpdates(t *testing.T) {
	mock := &mockProvider{rounds: []scriptedRound{
		{text: "hi", usage: &ai.ModelUsage{Model: mockModel, InputTokens: 10, OutputTokens: 5, Cost: 0.001}},
	}}
	withMock(t, mock)

	c := New(Config{})
	stream, err := c.Stream(context.Background(), mockModel, ai.History{ai.UserMessage("hello")})
	require.NoError(t, err)
	evs := drain(t, stream)

	var updates int
	for _, ev := range evs {
		if ev.Type == event.CostUpdate {
			updates++
			require.NotNil(t, ev.Usage)
			assert.Equal(t, 10, ev.Usage.InputTokens)
		}
	}
	assert.Equal(t, 1, updates)
}

func TestStreamModelResolution(t *testing.T) {
	t.Run("unknown model fails fast", func(t *testing.T) {
		c := New(Config{})
		_, err := c.Stream(context.Background(), "no-such-model", ai.History{})
		require.Error(t, err)

		var unknown *ErrUnknownModel
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("empty model without default fails fast", func(t *testing.T) {
		c := New(Config{})
		_, err := c.Stream(context.Background(), "", ai.History{})
		require.Error(t, err)

		var none *ErrNoModel
		assert.ErrorAs(t, err, &none)
	})

	t.Run("empty model falls back to the configured default", func(t *testing.T) {
		mock := &mockProvider{rounds: []scriptedRound{{text: "ok"}}}
		withMock(t, mock)

		c := New(Config{Defaults: Defaults{Chat: mockModel}})
		stream, err := c.Stream(context.Background(), "", ai.History{ai.UserMessage("hi")})
		require.NoError(t, err)
		drain(t, stream)

		assert.Equal(t, mockModel, mock.request(0).Model)
	})

	t.Run("missing API key surfaces before streaming", func(t *testing.T) {
		c := New(Config{})
		_, err := c.Stream(context.Background(), "claude-sonnet-4-5", ai.History{})
		require.Error(t, err)

		var missing *ErrMissingAPIKey
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "anthropic", missing.Provider)
	})
}

func TestStreamAgentID(t *testing.T) {
	mock := &mockProvider{rounds: []scriptedRound{{text: "ok"}}}
	withMock(t, mock)

	c := New(Config{})
	stream, err := c.Stream(context.Background(), mockModel,
		ai.History{ai.UserMessage("hi")}, WithAgentID("agent-9"))
	require.NoError(t, err)
	drain(t, stream)

	assert.Equal(t, "agent-9", mock.request(0).AgentID)
}

func TestStreamRequestIDStableAcrossRounds(t *testing.T) {
	mock := &mockProvider{rounds: []scriptedRound{
		{calls: []ai.ToolCall{{ID: "call-1", Name: "noop", Arguments: "{}"}}},
		{text: "done"},
	}}
	withMock(t, mock)

	c := New(Config{})
	c.Registry().MustRegister(tool.New("noop", "Does nothing", nil, func(ctx context.Context, inv tool.Invocation) (string, error) {
		return "", nil
	}))

	stream, err := c.Stream(context.Background(), mockModel, ai.History{ai.UserMessage("hi")})
	require.NoError(t, err)
	drain(t, stream)

	require.Equal(t, 2, mock.requestCount())
	assert.NotEmpty(t, mock.request(0).RequestID)
	assert.Equal(t, mock.request(0).RequestID, mock.request(1).RequestID)
}

func TestRun(t *testing.T) {
	mock := &mockProvider{rounds: []scriptedRound{
		{calls: []ai.ToolCall{{ID: "call-1", Name: "fetch", Arguments: "{}"}},
			usage: &ai.ModelUsage{Model: mockModel, InputTokens: 10, Cost: 0.01}},
		{text: "final answer", usage: &ai.ModelUsage{Model: mockModel, InputTokens: 20, OutputTokens: 4, Cost: 0.02}},
	}}
	withMock(t, mock)

	c := New(Config{})
	c.Registry().MustRegister(tool.New("fetch", "Fetch data", nil,
		func(ctx context.Context, inv tool.Invocation) (string, error) {
			return "payload", nil
		}))

	result, err := c.Run(context.Background(), mockModel, ai.History{ai.UserMessage("go")})
	require.NoError(t, err)

	assert.Equal(t, "final answer", result.Content)
	require.Len(t, result.ToolCalls, 1)
	require.Len(t, result.ToolResults, 1)
	assert.Equal(t, "payload", result.ToolResults[0].Content)
	assert.Equal(t, 30, result.Usage.InputTokens)
	assert.InDelta(t, 0.03, result.Usage.Cost, 1e-9)
}

func TestRunError(t *testing.T) {
	mock := &mockProvider{rounds: []scriptedRound{
		{text: "part", errMsg: "backend exploded"},
	}}
	withMock(t, mock)

	c := New(Config{})
	result, err := c.Run(context.Background(), mockModel, ai.History{ai.UserMessage("go")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend exploded")
	require.NotNil(t, result)
	assert.Equal(t, "part", result.Content)
}

func TestRunTyped(t *testing.T) {
	type answer struct {
		Value int    `json:"value"`
		Note  string `json:"note"`
	}

	mock := &mockProvider{rounds: []scriptedRound{
		{text: `{"value": 42, "note": "from the model"}`},
	}}
	withMock(t, mock)

	c := New(Config{})
	got, err := RunTyped[answer](context.Background(), c, mockModel, ai.History{ai.UserMessage("answer?")})
	require.NoError(t, err)
	assert.Equal(t, 42, got.Value)
	assert.Equal(t, "from the model", got.Note)

	t.Run("a response schema was requested", func(t *testing.T) {
		rs := mock.request(0).Options.ResponseSchema
		require.NotNil(t, rs)
		assert.Equal(t, "answer", rs.Name)
	})

	t.Run("unparseable output reports an unmarshal error", func(t *testing.T) {
		bad := &mockProvider{rounds: []scriptedRound{{text: "not json at all"}}}
		provider.Register(bad)

		_, err := RunTyped[answer](context.Background(), c, mockModel, ai.History{ai.UserMessage("?")})
		require.Error(t, err)

		var ue *UnmarshalError
		assert.ErrorAs(t, err, &ue)
	})
}

// shuffledProvider emits deltas out of their logical order while keeping the
// per-message Order counters correct, as an adapter that reorders internally
// would.
type shuffledProvider struct{}

func (shuffledProvider) ID() ai.ProviderID { return ai.ProviderMock }

func (shuffledProvider) CreateResponseStream(ctx context.Context, req provider.Request) (<-chan event.Event, error) {
	ch := event.NewChannel()
	go func() {
		defer close(ch)

		messageID := ai.GenerateMessageID()
		event.Emit(ch, event.Event{Type: event.MessageStart, MessageID: messageID})
		for _, d := range []struct {
			order int
			delta string
		}{{3, "lo"}, {1, "he"}, {4, "!"}, {2, "l"}} {
			event.Emit(ch, event.Event{Type: event.MessageDelta, MessageID: messageID, Order: d.order, Delta: d.delta})
		}
		event.Emit(ch, event.Event{Type: event.MessageComplete, MessageID: messageID, Content: "hello!"})
		event.Emit(ch, event.Event{Type: event.StreamEnd})
	}()
	return ch, nil
}

func TestStreamOutOfOrderDeltas(t *testing.T) {
	withMock(t, shuffledProvider{})

	c := New(Config{})
	stream, err := c.Stream(context.Background(), mockModel, ai.History{ai.UserMessage("hello")})
	require.NoError(t, err)

	evs := drain(t, stream)

	var deltas []event.Event
	var complete event.Event
	for _, ev := range evs {
		switch ev.Type {
		case event.MessageDelta:
			deltas = append(deltas, ev)
		case event.MessageComplete:
			complete = ev
		}
	}
	require.Len(t, deltas, 4)

	t.Run("the loop relays deltas in arrival order", func(t *testing.T) {
		var arrival string
		for _, ev := range deltas {
			arrival += ev.Delta
		}
		assert.Equal(t, "lohe!l", arrival)
	})

	t.Run("re-sorting by order reassembles the complete content", func(t *testing.T) {
		sort.Slice(deltas, func(i, j int) bool { return deltas[i].Order < deltas[j].Order })

		var text string
		for _, ev := range deltas {
			assert.Equal(t, complete.MessageID, ev.MessageID)
			text += ev.Delta
		}
		assert.Equal(t, complete.Content, text)
	})
}
