package main

import (
	"fmt"

	openaioption "github.com/openai/openai-go/option"

	streamui "github.com/haowjy/meridian-streamui-go"
	"github.com/haowjy/meridian-streamui-go/config"
	"github.com/haowjy/meridian-streamui-go/providers/anthropic"
	"github.com/haowjy/meridian-streamui-go/providers/lorem"
	"github.com/haowjy/meridian-streamui-go/providers/openai"
)

// newProvider builds the configured provider.
func newProvider(c *config.Config) (streamui.Provider, error) {
	switch c.ProviderID() {
	case streamui.ProviderOpenAI:
		p, err := openai.NewProvider(openai.Config{
			APIKey:  c.OpenAI.APIKey,
			BaseURL: c.OpenAI.BaseURL,
		}, openaioption.WithMaxRetries(2))
		if err != nil {
			return nil, fmt.Errorf("openai: %w (set OPENAI_API_KEY or openai.api_key)", err)
		}
		return p, nil

	case streamui.ProviderAnthropic:
		p, err := anthropic.NewProvider(c.Anthropic.APIKey)
		if err != nil {
			return nil, fmt.Errorf("anthropic: %w (set ANTHROPIC_API_KEY or anthropic.api_key)", err)
		}
		return p, nil

	case streamui.ProviderLorem:
		return lorem.NewProvider(), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}
}
