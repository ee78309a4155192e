package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/mwhitford/manifold/client"
	"github.com/mwhitford/manifold/cost"
	"github.com/mwhitford/manifold/model"
)

func demoEmbeddings(ctx context.Context, c *client.Client) {
	fmt.Println("\n┌─────────────────────────────────────────┐")
	fmt.Println("│           Embeddings Demo               │")
	fmt.Println("└─────────────────────────────────────────┘")

	texts := []string{
		"The quick brown fox jumps over the lazy dog",
		"A fast auburn fox leaps above a sleepy canine",
		"Quarterly revenue exceeded projections",
	}

	vectors, err := c.Embed(ctx, model.ClassEmbeddingDefault, texts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	fmt.Printf("\nEmbedded %d texts (%d dimensions)\n", len(vectors), len(vectors[0]))
	fmt.Printf("similarity(0,1) = %.4f  (paraphrases)\n", cosineSimilarity(vectors[0], vectors[1]))
	fmt.Printf("similarity(0,2) = %.4f  (unrelated)\n", cosineSimilarity(vectors[0], vectors[2]))
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func demoCostReport() {
	fmt.Println("\n┌─────────────────────────────────────────┐")
	fmt.Println("│            Cost Report                  │")
	fmt.Println("└─────────────────────────────────────────┘")

	totals := cost.Default.Totals()
	fmt.Printf("\nRequests:      %d\n", totals.Requests)
	fmt.Printf("Input tokens:  %d\n", totals.InputTokens)
	fmt.Printf("Output tokens: %d\n", totals.OutputTokens)
	fmt.Printf("Cached tokens: %d\n", totals.CachedTokens)
	fmt.Printf("Images:        %d\n", totals.Images)
	fmt.Printf("Total cost:    $%.6f\n", totals.Cost)
}
