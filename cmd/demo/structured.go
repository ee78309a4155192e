package main

import (
	"context"
	"fmt"
	"os"

	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/client"
	"github.com/mwhitford/manifold/model"
)

// BookInfo is the structured output shape for the demo.
type BookInfo struct {
	Title   string   `json:"title" desc:"The book title" required:"true"`
	Author  string   `json:"author" desc:"The author's full name" required:"true"`
	Year    int      `json:"year" desc:"Year of first publication"`
	Themes  []string `json:"themes" desc:"Major themes of the book"`
	Summary string   `json:"summary" desc:"One-sentence summary"`
	Fiction bool     `json:"fiction" desc:"Whether the book is fiction"`
}

func demoStructured(ctx context.Context, c *client.Client) {
	fmt.Println("\n┌─────────────────────────────────────────┐")
	fmt.Println("│        Structured Output Demo           │")
	fmt.Println("└─────────────────────────────────────────┘")

	history := ai.History{
		ai.UserMessage("Tell me about the book Nineteen Eighty-Four."),
	}

	book, err := client.RunTyped[BookInfo](ctx, c, model.ClassChatDefault, history)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	fmt.Printf("\nTitle:   %s\n", book.Title)
	fmt.Printf("Author:  %s\n", book.Author)
	fmt.Printf("Year:    %d\n", book.Year)
	fmt.Printf("Themes:  %v\n", book.Themes)
	fmt.Printf("Summary: %s\n", book.Summary)
	fmt.Printf("Fiction: %v\n", book.Fiction)
}
