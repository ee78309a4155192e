package client

import (
	"context"
	"fmt"

	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/provider"
	"github.com/mwhitford/manifold/retry"
)

// GenerateImage generates images from a prompt using the resolved image
// model. Usage is priced per image and reported through the cost tracker.
func (c *Client) GenerateImage(ctx context.Context, modelID, prompt string, opts provider.ImageOptions) (*provider.ImageResult, error) {
	if prompt == "" {
		return nil, ai.NewUserInputError("prompt is required for image generation", 0, nil)
	}

	resolved, providerID, err := c.resolveModel(modelID, c.defaults.Image, "image generation")
	if err != nil {
		return nil, err
	}

	p, err := c.providerFor(ctx, providerID, resolved)
	if err != nil {
		return nil, err
	}
	generator, ok := p.(provider.ImageGenerator)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support image generation", providerID)
	}

	result, err := retry.Do(ctx, c.retryConfig, func() (*provider.ImageResult, error) {
		return generator.GenerateImage(ctx, resolved, prompt, opts)
	})
	if err != nil {
		return nil, err
	}

	usage := result.Usage
	usage.Model = resolved
	usage.Modality = ai.ModalityImage
	if usage.ImageCount == 0 {
		usage.ImageCount = len(result.Images)
	}
	result.Usage = c.tracker.Report(nil, usage)

	return result, nil
}
