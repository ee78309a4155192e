package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	ai "github.com/mwhitford/manifold"
)

// CreateEmbedding generates embeddings for the provided texts.
// Vectors are returned in input order.
func (c *Client) CreateEmbedding(ctx context.Context, model string, texts []string) ([][]float64, *ai.ModelUsage, error) {
	if len(texts) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one text is required for embedding", ai.ErrEmptyInput)
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	}

	resp, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, nil, wrapError(err)
	}

	embeddings := make([][]float64, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = data.Embedding
	}

	usage := &ai.ModelUsage{
		Model:       model,
		InputTokens: int(resp.Usage.PromptTokens),
		Modality:    ai.ModalityEmbedding,
	}
	return embeddings, usage, nil
}
