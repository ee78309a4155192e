package cost

import (
	"testing"

	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/event"
	"github.com/mwhitford/manifold/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUsage(t *testing.T) {
	t.Run("prices usage from the model table", func(t *testing.T) {
		tracker := NewTracker()

		u := tracker.AddUsage(ai.ModelUsage{
			Model:        model.ClaudeSonnet45.ID,
			InputTokens:  1_000_000,
			OutputTokens: 1_000_000,
		})

		assert.InDelta(t, 18.00, u.Cost, 1e-9)

		totals := tracker.Totals()
		assert.Equal(t, 1, totals.Requests)
		assert.Equal(t, 1_000_000, totals.InputTokens)
		assert.InDelta(t, 18.00, totals.Cost, 1e-9)
	})

	t.Run("trusts a preset cost", func(t *testing.T) {
		tracker := NewTracker()
		u := tracker.AddUsage(ai.ModelUsage{Model: model.ClaudeSonnet45.ID, InputTokens: 100, Cost: 0.5})
		assert.Equal(t, 0.5, u.Cost)
	})

	t.Run("unknown models accumulate at zero cost", func(t *testing.T) {
		tracker := NewTracker()
		u := tracker.AddUsage(ai.ModelUsage{Model: "mystery-model", InputTokens: 100})
		assert.Zero(t, u.Cost)
		assert.Equal(t, 100, tracker.Totals().InputTokens)
	})

	t.Run("per-model totals are kept separately", func(t *testing.T) {
		tracker := NewTracker()
		tracker.AddUsage(ai.ModelUsage{Model: "model-a", InputTokens: 10})
		tracker.AddUsage(ai.ModelUsage{Model: "model-b", InputTokens: 20})
		tracker.AddUsage(ai.ModelUsage{Model: "model-a", InputTokens: 5})

		assert.Equal(t, 15, tracker.ModelTotals("model-a").InputTokens)
		assert.Equal(t, 20, tracker.ModelTotals("model-b").InputTokens)
		assert.Equal(t, 35, tracker.Totals().InputTokens)
	})

	t.Run("reset clears everything", func(t *testing.T) {
		tracker := NewTracker()
		tracker.AddUsage(ai.ModelUsage{Model: "model-a", InputTokens: 10})
		tracker.Reset()
		assert.Equal(t, Totals{}, tracker.Totals())
		assert.Equal(t, Totals{}, tracker.ModelTotals("model-a"))
	})
}

func TestAddEstimatedUsage(t *testing.T) {
	tracker := NewTracker()

	u := tracker.AddEstimatedUsage("some-model", "twelve chars", "four", nil)
	assert.Equal(t, 3, u.InputTokens)
	assert.Equal(t, 1, u.OutputTokens)
	assert.True(t, u.Estimated())
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("a"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	assert.Equal(t, 25, EstimateTokens(string(make([]byte, 100))))
}

func TestReport(t *testing.T) {
	t.Run("emits into the stream when no sink is registered", func(t *testing.T) {
		event.SetHandler(nil)
		tracker := NewTracker()
		ch := make(chan event.Event, 1)

		tracker.Report(ch, ai.ModelUsage{Model: "model-a", InputTokens: 10})

		ev := <-ch
		require.Equal(t, event.CostUpdate, ev.Type)
		require.NotNil(t, ev.Usage)
		assert.Equal(t, 10, ev.Usage.InputTokens)
	})

	t.Run("routes to the sink instead of the stream when registered", func(t *testing.T) {
		var sunk []event.Event
		event.SetHandler(func(e event.Event) { sunk = append(sunk, e) })
		defer event.SetHandler(nil)

		tracker := NewTracker()
		ch := make(chan event.Event, 1)
		tracker.Report(ch, ai.ModelUsage{Model: "model-a", InputTokens: 10})

		require.Len(t, sunk, 1)
		assert.Equal(t, event.CostUpdate, sunk[0].Type)
		assert.Empty(t, ch)
	})

	t.Run("accumulates totals regardless of route", func(t *testing.T) {
		event.SetHandler(nil)
		tracker := NewTracker()

		tracker.Report(nil, ai.ModelUsage{Model: "model-a", InputTokens: 10})
		assert.Equal(t, 10, tracker.Totals().InputTokens)
	})
}
