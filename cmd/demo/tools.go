package main

import (
	"context"
	"fmt"
	"os"

	ai "github.com/mwhitford/manifold"
	"github.com/mwhitford/manifold/client"
	"github.com/mwhitford/manifold/event"
	"github.com/mwhitford/manifold/model"
	"github.com/mwhitford/manifold/tool"
)

func registerDemoTools(registry *tool.Registry) {
	registry.MustRegister(tool.New(
		"get_weather",
		"Get the current weather for a location",
		[]tool.Param{
			{Name: "location", Type: tool.TypeString, Description: "The city name, e.g. San Francisco", Required: true},
			{Name: "unit", Type: tool.TypeString, Description: "The temperature unit", Enum: []string{"celsius", "fahrenheit"}, Default: "celsius"},
		},
		func(ctx context.Context, inv tool.Invocation) (string, error) {
			return fmt.Sprintf(`{"location":%q,"temperature":22,"unit":%q,"conditions":"Partly cloudy"}`,
				inv.String("location"), inv.String("unit")), nil
		},
	))
}

func demoTools(ctx context.Context, c *client.Client) {
	fmt.Println("\n┌─────────────────────────────────────────┐")
	fmt.Println("│          Tool Calling Demo              │")
	fmt.Println("└─────────────────────────────────────────┘")

	history := ai.History{
		ai.UserMessage("What's the weather like in Tokyo?"),
	}

	fmt.Println("\nUser: What's the weather like in Tokyo?")
	fmt.Println("Tools available: get_weather(location, unit)")

	stream, err := c.Stream(ctx, model.ClassChatDefault, history)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	fmt.Print("\nAssistant: ")
	for ev := range stream {
		switch ev.Type {
		case event.MessageDelta:
			fmt.Print(ev.Delta)
		case event.ToolStart:
			for _, call := range ev.ToolCalls {
				fmt.Printf("\n[calling %s %s]", call.Name, call.Arguments)
			}
		case event.ToolDone:
			if ev.ToolResult != nil {
				fmt.Printf("\n[result %s]\n", ev.ToolResult.Content)
			}
		case event.Error:
			fmt.Fprintf(os.Stderr, "\nStream error: %s\n", ev.Err)
			return
		}
	}
	fmt.Println()
}
