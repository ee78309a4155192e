// Package provider defines the adapter contract that vendor integrations
// implement, plus a process-wide registry keyed by provider id.
//
// Every adapter must implement Provider. Additional modalities (embeddings,
// image generation, speech, transcription, live sessions) are optional
// capability interfaces discovered by type assertion, never by inspecting
// concrete types.
package provider

import (
	"context"
	"fmt"
	"sync"

	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/event"
)

// Request carries everything an adapter needs for one provider round.
type Request struct {
	// Model is the concrete model identifier, already resolved from any
	// model class.
	Model string
	// History is the conversation so far. Adapters read it, never mutate it.
	History ai.History
	// Options holds model settings and the tool definitions for this round.
	Options ai.RequestOptions
	// AgentID labels agent-scoped events. May be empty.
	AgentID string
	// RequestID correlates usage records across the rounds of one logical
	// request. May be empty.
	RequestID string
}

// Provider streams model responses as the unified event sequence.
//
// Obligations on the returned channel: events arrive in production order;
// every delta carries the message_id of its message; a message_complete is
// emitted for every started message even on failure; exactly one terminal
// event (stream_end or error) is sent, last, before the channel closes.
type Provider interface {
	// ID returns the stable provider identifier.
	ID() ai.ProviderID

	// CreateResponseStream issues one provider round. The stream ends with
	// a terminal event; cancellation via ctx surfaces as an error event,
	// not a hang.
	CreateResponseStream(ctx context.Context, req Request) (<-chan event.Event, error)
}

// Embedder is implemented by providers that can produce embeddings.
type Embedder interface {
	CreateEmbedding(ctx context.Context, model string, texts []string) ([][]float64, *ai.ModelUsage, error)
}

// ImageGenerator is implemented by providers that can generate images.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, model, prompt string, opts ImageOptions) (*ImageResult, error)
}

// VoiceGenerator is implemented by providers that can synthesize speech.
type VoiceGenerator interface {
	GenerateVoice(ctx context.Context, model, text, voice string) ([]byte, error)
}

// Transcriber is implemented by providers that can transcribe audio.
type Transcriber interface {
	Transcribe(ctx context.Context, model string, audio []byte, mimeType string) (string, error)
}

// LiveSessioner is implemented by providers that support bidirectional
// audio sessions.
type LiveSessioner interface {
	OpenLiveSession(ctx context.Context, model string) (LiveSession, error)
}

// LiveSession is one open bidirectional session.
type LiveSession interface {
	Send(ctx context.Context, audio []byte) error
	Events() <-chan event.Event
	Close() error
}

// ImageOptions carries image generation settings.
type ImageOptions struct {
	// Size is a vendor size string such as "1024x1024".
	Size string
	// Count is the number of images to generate. Zero means one.
	Count int
	// Quality is a vendor quality tier. Empty means vendor default.
	Quality string
}

// ImageResult is a completed image generation.
type ImageResult struct {
	Images []GeneratedImage
	Usage  ai.ModelUsage
}

// GeneratedImage is one generated image, as a URL or inline data.
type GeneratedImage struct {
	URL    string
	Base64 string
	// RevisedPrompt is the prompt the vendor actually used, when reported.
	RevisedPrompt string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[ai.ProviderID]Provider)
)

// Register adds a provider to the process registry, replacing any provider
// previously registered under the same id.
func Register(p Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.ID()] = p
}

// Lookup returns the registered provider for an id.
func Lookup(id ai.ProviderID) (Provider, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[id]
	return p, ok
}

// Unregister removes a provider from the registry.
func Unregister(id ai.ProviderID) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, id)
}

// EmbedderFor returns the registered provider for id if it supports
// embeddings.
func EmbedderFor(id ai.ProviderID) (Embedder, error) {
	p, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("provider: not registered: %s", id)
	}
	e, ok := p.(Embedder)
	if !ok {
		return nil, fmt.Errorf("provider: %s does not support embeddings", id)
	}
	return e, nil
}

// ImageGeneratorFor returns the registered provider for id if it supports
// image generation.
func ImageGeneratorFor(id ai.ProviderID) (ImageGenerator, error) {
	p, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("provider: not registered: %s", id)
	}
	g, ok := p.(ImageGenerator)
	if !ok {
		return nil, fmt.Errorf("provider: %s does not support image generation", id)
	}
	return g, nil
}
