package google

import (
	"context"
	"fmt"

	ai "github.com/mwhitford/manifold"
	"google.golang.org/genai"
)

// CreateEmbedding generates embeddings for the provided texts.
// Vectors are returned in input order. Google does not report token usage
// for embeddings, so the returned usage carries zero token counts and the
// cost tracker falls back to estimation.
func (c *Client) CreateEmbedding(ctx context.Context, model string, texts []string) ([][]float64, *ai.ModelUsage, error) {
	if len(texts) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one text is required for embedding", ai.ErrEmptyInput)
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		}
	}

	resp, err := c.client.Models.EmbedContent(ctx, model, contents, &genai.EmbedContentConfig{})
	if err != nil {
		return nil, nil, wrapError(err)
	}

	embeddings := make([][]float64, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		embeddings[i] = make([]float64, len(emb.Values))
		for j, v := range emb.Values {
			embeddings[i][j] = float64(v)
		}
	}

	usage := &ai.ModelUsage{
		Model:    model,
		Modality: ai.ModalityEmbedding,
	}
	return embeddings, usage, nil
}
