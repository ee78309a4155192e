package main

import (
	"context"
	"fmt"
	"os"

	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/client"
	"github.com/mwhitford/manifold/event"
	"github.com/mwhitford/manifold/model"
)

func demoChat(ctx context.Context, c *client.Client) {
	fmt.Println("\n┌─────────────────────────────────────────┐")
	fmt.Println("│          Streaming Chat Demo            │")
	fmt.Println("└─────────────────────────────────────────┘")

	history := ai.History{
		ai.UserMessage("Say hello in 3 different languages, one per line."),
	}

	stream, err := c.Stream(ctx, model.ClassChatDefault, history)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	fmt.Print("\nAssistant:\n")
	for ev := range stream {
		switch ev.Type {
		case event.MessageDelta:
			fmt.Print(ev.Delta)
		case event.CostUpdate:
			if ev.Usage != nil {
				fmt.Printf("\n[Tokens: %d in, %d out | $%.6f]\n",
					ev.Usage.InputTokens, ev.Usage.OutputTokens, ev.Usage.Cost)
			}
		case event.Error:
			fmt.Fprintf(os.Stderr, "\nStream error: %s\n", ev.Err)
			return
		}
	}
}
