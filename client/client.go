// Package client provides the unified entry points: streaming chat with
// tool orchestration, embeddings, and image generation, dispatched to
// whichever provider backs the requested model.
package client

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/cost"
	"github.com/mwhitford/manifold/model"
	"github.com/mwhitford/manifold/provider"
	"github.com/mwhitford/manifold/provider/anthropic"
	"github.com/mwhitford/manifold/provider/google"
	"github.com/mwhitford/manifold/provider/openai"
	"github.com/mwhitford/manifold/retry"
	"github.com/mwhitford/manifold/tool"
)

// DefaultEmbedCacheSize bounds the in-memory embedding cache.
const DefaultEmbedCacheSize = 1024

// APIKeys holds API keys per provider. Only configure keys for providers
// you intend to use.
type APIKeys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// Defaults holds default model ids (or model classes) per capability.
type Defaults struct {
	Chat      string
	Embedding string
	Image     string
}

// Config configures a Client.
type Config struct {
	// APIKeys contains authentication keys for each provider.
	APIKeys APIKeys

	// Defaults contains default models per capability, used when a request
	// names no model.
	Defaults Defaults

	// RetryConfig configures retry behavior for transient errors when
	// establishing provider calls. Nil means the default configuration.
	RetryConfig *retry.Config

	// EmbedCacheSize bounds the embedding cache. Zero means
	// DefaultEmbedCacheSize; negative disables caching.
	EmbedCacheSize int
}

// ErrMissingAPIKey is returned when a model's provider has no key
// configured.
type ErrMissingAPIKey struct {
	Provider string
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// ErrNoModel is returned when a request names no model and no default is
// configured for the operation.
type ErrNoModel struct {
	Operation string
}

func (e *ErrNoModel) Error() string {
	return fmt.Sprintf("no model specified for %s and no default configured", e.Operation)
}

// ErrUnknownModel is returned when a model id resolves to no registered
// model.
type ErrUnknownModel struct {
	Model string
}

func (e *ErrUnknownModel) Error() string {
	return fmt.Sprintf("unknown model: %s", e.Model)
}

type embedKey struct {
	model string
	text  string
}

// Client is the unified multi-provider client. Vendor clients initialize
// lazily on first use; a Client is safe for concurrent use.
type Client struct {
	apiKeys     APIKeys
	defaults    Defaults
	retryConfig retry.Config

	registry  *tool.Registry
	runner    *tool.Runner
	processor *tool.Processor
	tracker   *cost.Tracker

	embedCache *lru.Cache[embedKey, []float64]

	mu              sync.RWMutex
	anthropicClient *anthropic.Client
	openaiClient    *openai.Client
	googleClient    *google.Client
	googleInitErr   error
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRegistry sets the default tool registry for streaming requests.
func WithRegistry(r *tool.Registry) ClientOption {
	return func(c *Client) {
		c.registry = r
		c.runner = tool.NewRunner(r)
	}
}

// WithTracker sets the cost tracker. Defaults to cost.Default.
func WithTracker(t *cost.Tracker) ClientOption {
	return func(c *Client) { c.tracker = t }
}

// WithSummarizer sets the summarizer used by tool output post-processing.
// Without one, oversized tool output is truncated instead of summarized.
func WithSummarizer(s tool.Summarizer) ClientOption {
	return func(c *Client) { c.processor.Summarizer = s }
}

// New creates a Client.
func New(cfg Config, opts ...ClientOption) *Client {
	retryConfig := retry.DefaultConfig()
	if cfg.RetryConfig != nil {
		retryConfig = *cfg.RetryConfig
	}

	registry := tool.NewRegistry()
	c := &Client{
		apiKeys:     cfg.APIKeys,
		defaults:    cfg.Defaults,
		retryConfig: retryConfig,
		registry:    registry,
		runner:      tool.NewRunner(registry),
		processor:   tool.NewProcessor(nil),
		tracker:     cost.Default,
	}

	cacheSize := cfg.EmbedCacheSize
	if cacheSize == 0 {
		cacheSize = DefaultEmbedCacheSize
	}
	if cacheSize > 0 {
		// Size is validated above; NewLRU only fails on size <= 0.
		c.embedCache, _ = lru.New[embedKey, []float64](cacheSize)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the client's default tool registry.
func (c *Client) Registry() *tool.Registry { return c.registry }

// Runner returns the tool runner executing against the default registry.
func (c *Client) Runner() *tool.Runner { return c.runner }

// Processor returns the tool output post-processor.
func (c *Client) Processor() *tool.Processor { return c.processor }

// resolveModel resolves a model id or class to a registered model,
// falling back to the operation default when empty.
func (c *Client) resolveModel(id, fallback, operation string) (string, ai.ProviderID, error) {
	if id == "" {
		id = fallback
	}
	if id == "" {
		return "", "", &ErrNoModel{Operation: operation}
	}
	resolved := model.Resolve(id)
	info, ok := model.Lookup(resolved)
	if !ok {
		return "", "", &ErrUnknownModel{Model: resolved}
	}
	return resolved, info.Provider, nil
}

// providerFor returns the provider backing the given id. Providers
// registered via provider.Register take precedence, which is how mock and
// custom providers plug in; the built-in vendors initialize lazily from
// API keys.
func (c *Client) providerFor(ctx context.Context, id ai.ProviderID, modelID string) (provider.Provider, error) {
	if p, ok := provider.Lookup(id); ok {
		return p, nil
	}

	switch id {
	case ai.ProviderAnthropic:
		return c.getAnthropic(modelID)
	case ai.ProviderOpenAI:
		return c.getOpenAI(modelID)
	case ai.ProviderGoogle:
		return c.getGoogle(ctx, modelID)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", id)
	}
}

func (c *Client) getAnthropic(modelID string) (*anthropic.Client, error) {
	c.mu.RLock()
	if c.anthropicClient != nil {
		defer c.mu.RUnlock()
		return c.anthropicClient, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.anthropicClient != nil {
		return c.anthropicClient, nil
	}
	if c.apiKeys.Anthropic == "" {
		return nil, &ErrMissingAPIKey{Provider: "anthropic", Model: modelID}
	}

	c.anthropicClient = anthropic.New(c.apiKeys.Anthropic, anthropic.WithTracker(c.tracker))
	return c.anthropicClient, nil
}

func (c *Client) getOpenAI(modelID string) (*openai.Client, error) {
	c.mu.RLock()
	if c.openaiClient != nil {
		defer c.mu.RUnlock()
		return c.openaiClient, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.openaiClient != nil {
		return c.openaiClient, nil
	}
	if c.apiKeys.OpenAI == "" {
		return nil, &ErrMissingAPIKey{Provider: "openai", Model: modelID}
	}

	c.openaiClient = openai.New(c.apiKeys.OpenAI, openai.WithTracker(c.tracker))
	return c.openaiClient, nil
}

func (c *Client) getGoogle(ctx context.Context, modelID string) (*google.Client, error) {
	c.mu.RLock()
	if c.googleClient != nil {
		defer c.mu.RUnlock()
		return c.googleClient, nil
	}
	if c.googleInitErr != nil {
		defer c.mu.RUnlock()
		return nil, c.googleInitErr
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.googleClient != nil {
		return c.googleClient, nil
	}
	if c.googleInitErr != nil {
		return nil, c.googleInitErr
	}
	if c.apiKeys.Google == "" {
		return nil, &ErrMissingAPIKey{Provider: "google", Model: modelID}
	}

	client, err := google.New(ctx, c.apiKeys.Google, google.WithTracker(c.tracker))
	if err != nil {
		c.googleInitErr = fmt.Errorf("initialize google client: %w", err)
		return nil, c.googleInitErr
	}

	c.googleClient = client
	return c.googleClient, nil
}
