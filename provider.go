package manifold

// ProviderID identifies an AI provider backend.
type ProviderID string

// String returns the provider identifier.
func (p ProviderID) String() string { return string(p) }

// Supported providers.
const (
	ProviderAnthropic ProviderID = "anthropic"
	ProviderOpenAI    ProviderID = "openai"
	ProviderGoogle    ProviderID = "google"
	ProviderMock      ProviderID = "mock"
)
