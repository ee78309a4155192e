package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mwhitford/manifold/client"
)

var reader = bufio.NewReader(os.Stdin)

func main() {
	godotenv.Load()
	ctx := context.Background()

	fmt.Println("╔════════════════════════════════════════╗")
	fmt.Println("║          manifold - Demo               ║")
	fmt.Println("╚════════════════════════════════════════╝")
	fmt.Println()

	cfg := client.Config{
		APIKeys: client.APIKeys{
			Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
			OpenAI:    os.Getenv("OPENAI_API_KEY"),
			Google:    os.Getenv("GOOGLE_API_KEY"),
		},
		Defaults: client.Defaults{
			Chat:      os.Getenv("MANIFOLD_CHAT_MODEL"),
			Embedding: os.Getenv("MANIFOLD_EMBEDDING_MODEL"),
			Image:     os.Getenv("MANIFOLD_IMAGE_MODEL"),
		},
	}

	if cfg.APIKeys.Anthropic == "" && cfg.APIKeys.OpenAI == "" && cfg.APIKeys.Google == "" {
		fmt.Println("No API keys found. Set ANTHROPIC_API_KEY, OPENAI_API_KEY, or GOOGLE_API_KEY.")
		return
	}

	c := client.New(cfg)
	registerDemoTools(c.Registry())

	for {
		fmt.Println()
		fmt.Println("Demos:")
		fmt.Println("  [1] Streaming chat")
		fmt.Println("  [2] Tool calling")
		fmt.Println("  [3] Structured output")
		fmt.Println("  [4] Embeddings")
		fmt.Println("  [5] Cost report")
		fmt.Println("  [q] Quit")
		fmt.Print("Select: ")

		answer, _ := reader.ReadString('\n')
		switch strings.TrimSpace(answer) {
		case "1":
			demoChat(ctx, c)
		case "2":
			demoTools(ctx, c)
		case "3":
			demoStructured(ctx, c)
		case "4":
			demoEmbeddings(ctx, c)
		case "5":
			demoCostReport()
		case "q", "Q":
			return
		}
	}
}
