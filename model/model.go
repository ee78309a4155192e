// Package model provides model identifiers, pricing tables, and model-class
// resolution for all supported providers.
//
// Models are looked up by their API identifier string. Abstract model
// classes (e.g. [ClassChatDefault]) resolve to a concrete model so callers
// can request "a fast chat model" without naming a vendor.
package model

import (
	"sync"

	ai "github.com/mwhitford/manifold"
)

// Kind identifies what a model is for.
type Kind string

const (
	KindChat      Kind = "chat"
	KindEmbedding Kind = "embedding"
	KindImage     Kind = "image"
)

// Info describes one model: its API identifier, owning provider, kind,
// and pricing. Pricing fields not matching the kind are zero.
type Info struct {
	ID       string
	Provider ai.ProviderID
	Kind     Kind

	Chat      ChatPricing
	Embedding EmbeddingPricing
	Image     ImagePricing
}

// String returns the API identifier for this model.
func (m Info) String() string { return m.ID }

// registry indexes every declared model by API identifier. Register may be
// called at runtime, so access is guarded like the class table.
var (
	registryMu sync.RWMutex
	registry   = map[string]Info{}
)

func register(m Info) Info {
	registryMu.Lock()
	registry[m.ID] = m
	registryMu.Unlock()
	return m
}

// Lookup returns the model info for an API identifier.
func Lookup(id string) (Info, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	m, ok := registry[id]
	return m, ok
}

// ProviderOf returns the provider owning the given model identifier.
func ProviderOf(id string) (ai.ProviderID, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	m, ok := registry[id]
	if !ok {
		return "", false
	}
	return m.Provider, true
}

// Register adds a model to the process-wide registry. Intended for test
// doubles and private deployments; last registration for an id wins.
func Register(m Info) {
	register(m)
}

// Anthropic Claude chat models.
// Pricing last verified: December 14, 2025.
var (
	ClaudeOpus45   = register(Info{ID: "claude-opus-4-5", Provider: ai.ProviderAnthropic, Kind: KindChat, Chat: ChatPricing{InputPerMillion: 5.00, OutputPerMillion: 25.00}})
	ClaudeSonnet45 = register(Info{ID: "claude-sonnet-4-5", Provider: ai.ProviderAnthropic, Kind: KindChat, Chat: ChatPricing{InputPerMillion: 3.00, OutputPerMillion: 15.00}})
	ClaudeHaiku45  = register(Info{ID: "claude-haiku-4-5", Provider: ai.ProviderAnthropic, Kind: KindChat, Chat: ChatPricing{InputPerMillion: 1.00, OutputPerMillion: 5.00}})
)

// OpenAI chat models.
// Pricing last verified: December 14, 2025.
var (
	GPT52    = register(Info{ID: "gpt-5.2", Provider: ai.ProviderOpenAI, Kind: KindChat, Chat: ChatPricing{InputPerMillion: 1.75, OutputPerMillion: 14.00, CachedInputPerMillion: 0.175}})
	GPT51    = register(Info{ID: "gpt-5.1", Provider: ai.ProviderOpenAI, Kind: KindChat, Chat: ChatPricing{InputPerMillion: 1.25, OutputPerMillion: 10.00, CachedInputPerMillion: 0.125}})
	GPT5Mini = register(Info{ID: "gpt-5-mini", Provider: ai.ProviderOpenAI, Kind: KindChat, Chat: ChatPricing{InputPerMillion: 0.25, OutputPerMillion: 1.00, CachedInputPerMillion: 0.025}})
	GPT5Nano = register(Info{ID: "gpt-5-nano", Provider: ai.ProviderOpenAI, Kind: KindChat, Chat: ChatPricing{InputPerMillion: 0.10, OutputPerMillion: 0.40, CachedInputPerMillion: 0.01}})
	O4Mini   = register(Info{ID: "o4-mini", Provider: ai.ProviderOpenAI, Kind: KindChat, Chat: ChatPricing{InputPerMillion: 0.50, OutputPerMillion: 2.00, CachedInputPerMillion: 0.05}})
)

// Google Gemini chat models.
// Pricing last verified: December 14, 2025.
var (
	Gemini3Pro        = register(Info{ID: "gemini-3.0-pro", Provider: ai.ProviderGoogle, Kind: KindChat, Chat: ChatPricing{InputPerMillion: 2.00, OutputPerMillion: 12.00}})
	Gemini25Pro       = register(Info{ID: "gemini-2.5-pro", Provider: ai.ProviderGoogle, Kind: KindChat, Chat: ChatPricing{InputPerMillion: 1.25, OutputPerMillion: 10.00}})
	Gemini25Flash     = register(Info{ID: "gemini-2.5-flash", Provider: ai.ProviderGoogle, Kind: KindChat, Chat: ChatPricing{InputPerMillion: 0.15, OutputPerMillion: 0.60}})
	Gemini25FlashLite = register(Info{ID: "gemini-2.5-flash-lite", Provider: ai.ProviderGoogle, Kind: KindChat, Chat: ChatPricing{InputPerMillion: 0.075, OutputPerMillion: 0.30}})
)

// Embedding models.
// Pricing last verified: December 14, 2025.
var (
	TextEmbedding3Large = register(Info{ID: "text-embedding-3-large", Provider: ai.ProviderOpenAI, Kind: KindEmbedding, Embedding: EmbeddingPricing{PerMillion: 0.13}})
	TextEmbedding3Small = register(Info{ID: "text-embedding-3-small", Provider: ai.ProviderOpenAI, Kind: KindEmbedding, Embedding: EmbeddingPricing{PerMillion: 0.02}})
	GeminiEmbedding001  = register(Info{ID: "gemini-embedding-001", Provider: ai.ProviderGoogle, Kind: KindEmbedding, Embedding: EmbeddingPricing{PerMillion: 0.15}})
)

// Image models.
// Pricing last verified: December 14, 2025.
var (
	GPTImage1 = register(Info{ID: "gpt-image-1", Provider: ai.ProviderOpenAI, Kind: KindImage, Image: ImagePricing{PerImage: 0.04}})
	Imagen4   = register(Info{ID: "imagen-4.0-generate-001", Provider: ai.ProviderGoogle, Kind: KindImage, Image: ImagePricing{PerImage: 0.04}})
)
