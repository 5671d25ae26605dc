// Package weather provides the simulated weather lookup and the getWeather
// tool that renders it.
package weather

import (
	"context"
	"fmt"
	"time"

	streamui "github.com/haowjy/meridian-streamui-go"
	"github.com/haowjy/meridian-streamui-go/components"
)

// ToolName is the name the model calls the tool by.
const ToolName = "getWeather"

// Reading is the canned result of every lookup.
const Reading = "82°F️ ☀️"

// LookupDelay is how long a lookup takes.
const LookupDelay = 2 * time.Second

// Lookup returns the weather for location after LookupDelay.
// It returns ctx.Err() if the context is done first.
func Lookup(ctx context.Context, location string) (string, error) {
	timer := time.NewTimer(LookupDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return Reading, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// NewTool creates the getWeather UI tool. It shows the loading placeholder
// while the lookup runs, then the weather component.
func NewTool() (streamui.UITool, error) {
	tool, err := streamui.NewCustomTool(ToolName, "Get the weather for a location", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"location": map[string]interface{}{
				"type": "string",
			},
		},
		"required": []string{"location"},
	})
	if err != nil {
		return streamui.UITool{}, fmt.Errorf("create %s tool: %w", ToolName, err)
	}

	return streamui.UITool{
		Tool:     tool,
		Generate: generate,
	}, nil
}

func generate(ctx context.Context, args map[string]interface{}, yield func(streamui.Fragment) bool) (streamui.Fragment, error) {
	location, _ := args["location"].(string)

	if !yield(components.Loading()) {
		return streamui.Fragment{}, context.Canceled
	}

	reading, err := Lookup(ctx, location)
	if err != nil {
		return streamui.Fragment{}, err
	}
	return components.Weather(location, reading), nil
}
