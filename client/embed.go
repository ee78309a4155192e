package client

import (
	"context"
	"fmt"

	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/cost"
	"github.com/mwhitford/manifold/provider"
	"github.com/mwhitford/manifold/retry"
)

// Embed returns one embedding vector per input text, in input order.
// Vectors are cached per (model, text); only cache misses reach the
// provider, in a single batched call. Usage for the provider call is
// priced and reported through the cost tracker.
func (c *Client) Embed(ctx context.Context, modelID string, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, ai.NewUserInputError("no texts provided for embedding", 0, nil)
	}

	resolved, providerID, err := c.resolveModel(modelID, c.defaults.Embedding, "embedding")
	if err != nil {
		return nil, err
	}

	vectors := make([][]float64, len(texts))
	var misses []string
	var missIndex []int

	for i, text := range texts {
		if c.embedCache != nil {
			if v, ok := c.embedCache.Get(embedKey{model: resolved, text: text}); ok {
				vectors[i] = v
				continue
			}
		}
		misses = append(misses, text)
		missIndex = append(missIndex, i)
	}

	if len(misses) == 0 {
		return vectors, nil
	}

	embedder, err := c.embedderFor(ctx, providerID, resolved)
	if err != nil {
		return nil, err
	}

	type embedResult struct {
		vectors [][]float64
		usage   *ai.ModelUsage
	}

	result, err := retry.Do(ctx, c.retryConfig, func() (embedResult, error) {
		vecs, usage, err := embedder.CreateEmbedding(ctx, resolved, misses)
		return embedResult{vectors: vecs, usage: usage}, err
	})
	if err != nil {
		return nil, err
	}
	if len(result.vectors) != len(misses) {
		return nil, fmt.Errorf("embedding count mismatch: got %d vectors for %d texts", len(result.vectors), len(misses))
	}

	for j, vec := range result.vectors {
		vectors[missIndex[j]] = vec
		if c.embedCache != nil {
			c.embedCache.Add(embedKey{model: resolved, text: misses[j]}, vec)
		}
	}

	c.reportEmbedUsage(resolved, misses, result.usage)
	return vectors, nil
}

// embedderFor returns the embedding-capable provider backing the id.
func (c *Client) embedderFor(ctx context.Context, id ai.ProviderID, modelID string) (provider.Embedder, error) {
	p, err := c.providerFor(ctx, id, modelID)
	if err != nil {
		return nil, err
	}
	e, ok := p.(provider.Embedder)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support embeddings", id)
	}
	return e, nil
}

// reportEmbedUsage prices and records the usage of one embedding call.
// Providers that report no token counts get a length-based estimate.
func (c *Client) reportEmbedUsage(modelID string, texts []string, usage *ai.ModelUsage) {
	u := ai.ModelUsage{Modality: ai.ModalityEmbedding}
	if usage != nil {
		u = *usage
	}
	u.Model = modelID
	u.Modality = ai.ModalityEmbedding

	if u.InputTokens == 0 {
		for _, text := range texts {
			u.InputTokens += cost.EstimateTokens(text)
		}
		if u.Metadata == nil {
			u.Metadata = make(map[string]string)
		}
		u.Metadata["estimated"] = "true"
	}

	c.tracker.Report(nil, u)
}
