package manifold

// Modality tags the kind of work a usage record accounts for.
type Modality string

const (
	ModalityText      Modality = "text"
	ModalityEmbedding Modality = "embedding"
	ModalityImage     Modality = "image"
	ModalityAudio     Modality = "audio"
)

// ModelUsage records token and image consumption for one provider round.
// Adapters populate it from vendor usage metadata; when a provider reports
// nothing, the cost tracker estimates it from text lengths.
type ModelUsage struct {
	// Model is the resolved model identifier the usage belongs to.
	Model string `json:"model"`

	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	// CachedTokens counts prompt-cached input tokens, when reported.
	CachedTokens int `json:"cachedTokens,omitempty"`
	// ImageCount counts generated images for image requests.
	ImageCount int `json:"imageCount,omitempty"`

	// Cost is the computed USD cost. Zero until priced by the cost tracker.
	Cost float64 `json:"cost,omitempty"`

	// Modality tags what kind of request produced this usage.
	Modality Modality `json:"modality,omitempty"`

	// RequestID correlates the usage with a logical request, when known.
	RequestID string `json:"requestId,omitempty"`

	// Metadata carries free-form annotations (e.g. "estimated": "true").
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Add accumulates another usage record into this one. Model and metadata of
// the receiver are preserved.
func (u *ModelUsage) Add(other ModelUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CachedTokens += other.CachedTokens
	u.ImageCount += other.ImageCount
	u.Cost += other.Cost
}

// Estimated reports whether the record was derived from a length heuristic
// rather than provider-reported token counts.
func (u ModelUsage) Estimated() bool {
	return u.Metadata["estimated"] == "true"
}
