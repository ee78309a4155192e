package google

import (
	"context"
	"encoding/base64"

	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/provider"
	"google.golang.org/genai"
)

// GenerateImage generates images from a text prompt using Imagen.
func (c *Client) GenerateImage(ctx context.Context, model, prompt string, opts provider.ImageOptions) (*provider.ImageResult, error) {
	config := &genai.GenerateImagesConfig{}

	n := opts.Count
	if n <= 0 {
		n = 1
	}
	config.NumberOfImages = int32(n)

	if opts.Size != "" {
		config.AspectRatio = sizeToAspectRatio(opts.Size)
	}

	resp, err := c.client.Models.GenerateImages(ctx, model, prompt, config)
	if err != nil {
		return nil, wrapError(err)
	}

	images := make([]provider.GeneratedImage, len(resp.GeneratedImages))
	for i, img := range resp.GeneratedImages {
		var b64 string
		if img.Image != nil && len(img.Image.ImageBytes) > 0 {
			b64 = base64.StdEncoding.EncodeToString(img.Image.ImageBytes)
		}
		// Imagen returns bytes only, no URLs or revised prompts.
		images[i] = provider.GeneratedImage{Base64: b64}
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

// sizeToAspectRatio maps pixel sizes onto Imagen aspect ratio strings.
func sizeToAspectRatio(size string) string {
	switch size {
	case "1024x1792":
		return "9:16"
	case "1792x1024":
		return "16:9"
	default:
		return "1:1"
	}
}
