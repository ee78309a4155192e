package model

// ChatPricing contains pricing per million tokens (USD) for chat models.
// Fields are zero if not applicable to a specific provider's model.
type ChatPricing struct {
	// InputPerMillion is the standard input token pricing.
	InputPerMillion float64
	// OutputPerMillion is the standard output token pricing.
	OutputPerMillion float64
	// CachedInputPerMillion is for prompt-cached input tokens.
	// Check HasCachedPricing() before using.
	CachedInputPerMillion float64
}

// HasCachedPricing returns true if the model supports cached input pricing.
func (p ChatPricing) HasCachedPricing() bool {
	return p.CachedInputPerMillion > 0
}

// Cost computes the USD cost for the given token counts. Cached tokens are
// billed at the cached rate when the model has one and are assumed to be a
// subset of the input tokens.
func (p ChatPricing) Cost(inputTokens, outputTokens, cachedTokens int) float64 {
	billedInput := inputTokens
	var cost float64
	if cachedTokens > 0 && p.HasCachedPricing() {
		if cachedTokens > billedInput {
			cachedTokens = billedInput
		}
		billedInput -= cachedTokens
		cost += float64(cachedTokens) / 1_000_000 * p.CachedInputPerMillion
	}
	cost += float64(billedInput) / 1_000_000 * p.InputPerMillion
	cost += float64(outputTokens) / 1_000_000 * p.OutputPerMillion
	return cost
}

// EmbeddingPricing contains embedding pricing per million tokens (USD).
type EmbeddingPricing struct {
	PerMillion float64
}

// Cost computes the USD cost for the given input token count.
func (p EmbeddingPricing) Cost(inputTokens int) float64 {
	return float64(inputTokens) / 1_000_000 * p.PerMillion
}

// ImagePricing contains image generation pricing (USD per image).
type ImagePricing struct {
	PerImage float64
}

// Cost computes the USD cost for the given number of generated images.
func (p ImagePricing) Cost(images int) float64 {
	return float64(images) * p.PerImage
}
