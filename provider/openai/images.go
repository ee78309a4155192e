package openai

import (
	"context"

	"github.com/openai/openai-go"
	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/provider"
)

// GenerateImage generates images from a text prompt.
func (c *Client) GenerateImage(ctx context.Context, model, prompt string, opts provider.ImageOptions) (*provider.ImageResult, error) {
	params := openai.ImageGenerateParams{
		Model:  openai.ImageModel(model),
		Prompt: prompt,
	}

	size := opts.Size
	if size == "" {
		size = "1024x1024"
	}
	params.Size = openai.ImageGenerateParamsSize(size)

	n := opts.Count
	if n <= 0 {
		n = 1
	}
	params.N = openai.Int(int64(n))

	if opts.Quality != "" {
		params.Quality = openai.ImageGenerateParamsQuality(opts.Quality)
	}

	resp, err := c.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}

	images := make([]provider.GeneratedImage, len(resp.Data))
	for i, img := range resp.Data {
		images[i] = provider.GeneratedImage{
			URL:           img.URL,
			Base64:        img.B64JSON,
			RevisedPrompt: img.RevisedPrompt,
		}
	}

	return &provider.ImageResult{
		Images: images,
		Usage: ai.ModelUsage{
			Model:      model,
			ImageCount: len(images),
			Modality:   ai.ModalityImage,
		},
	}, nil
}
