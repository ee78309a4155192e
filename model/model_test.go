package model

import (
	"fmt"
	"sync"
	"testing"
	"time"

	ai "github.com/mwhitford/manifold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Run("finds declared models", func(t *testing.T) {
		info, ok := Lookup("claude-sonnet-4-5")
		require.True(t, ok)
		assert.Equal(t, ai.ProviderAnthropic, info.Provider)
		assert.Equal(t, KindChat, info.Kind)
	})

	t.Run("misses unknown identifiers", func(t *testing.T) {
		_, ok := Lookup("no-such-model")
		assert.False(t, ok)
	})

	t.Run("custom registrations are visible", func(t *testing.T) {
		Register(Info{ID: "test-custom-model", Provider: ai.ProviderMock, Kind: KindChat})
		info, ok := Lookup("test-custom-model")
		require.True(t, ok)
		assert.Equal(t, ai.ProviderMock, info.Provider)
	})
}

func TestRegisterConcurrentWithLookup(t *testing.T) {
	// Register is a runtime operation, so it must not race with the lookups
	// issued on every request. Run under -race.
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
				Register(Info{ID: fmt.Sprintf("race-model-%d", i%8), Provider: ai.ProviderMock, Kind: KindChat})
			}
		}
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				Lookup("race-model-0")
				ProviderOf("gpt-5.1")
			}
		}
	}()

	time.Sleep(50 * time.Millisecond)
	close(done)
	wg.Wait()

	p, ok := ProviderOf("race-model-0")
	require.True(t, ok)
	assert.Equal(t, ai.ProviderMock, p)
}

func TestProviderOf(t *testing.T) {
	p, ok := ProviderOf("gpt-5.1")
	require.True(t, ok)
	assert.Equal(t, ai.ProviderOpenAI, p)

	_, ok = ProviderOf("no-such-model")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	t.Run("classes resolve to concrete models", func(t *testing.T) {
		resolved := Resolve(ClassChatDefault)
		assert.NotEqual(t, ClassChatDefault, resolved)

		_, ok := Lookup(resolved)
		assert.True(t, ok)
	})

	t.Run("concrete identifiers resolve to themselves", func(t *testing.T) {
		assert.Equal(t, "gpt-5.1", Resolve("gpt-5.1"))
	})

	t.Run("classes can be rebound", func(t *testing.T) {
		original := Resolve(ClassChatFast)
		defer SetClass(ClassChatFast, original)

		SetClass(ClassChatFast, "gpt-5-nano")
		assert.Equal(t, "gpt-5-nano", Resolve(ClassChatFast))
	})
}

func TestPricing(t *testing.T) {
	t.Run("chat pricing includes cached token discount", func(t *testing.T) {
		p := ChatPricing{InputPerMillion: 1.00, OutputPerMillion: 4.00, CachedInputPerMillion: 0.10}

		// 1M input (half cached), 1M output.
		cost := p.Cost(1_000_000, 1_000_000, 500_000)
		assert.InDelta(t, 0.5+0.05+4.0, cost, 1e-9)
	})

	t.Run("embedding pricing is per input token", func(t *testing.T) {
		p := EmbeddingPricing{PerMillion: 0.02}
		assert.InDelta(t, 0.02, p.Cost(1_000_000), 1e-9)
	})

	t.Run("image pricing is per image", func(t *testing.T) {
		p := ImagePricing{PerImage: 0.04}
		assert.InDelta(t, 0.12, p.Cost(3), 1e-9)
	})
}
