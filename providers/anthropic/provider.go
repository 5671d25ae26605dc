package anthropic

import (
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	streamui "github.com/haowjy/meridian-streamui-go"
	"github.com/haowjy/meridian-streamui-go/logging"
)

// Provider implements the streamui.Provider interface for Anthropic (Claude) models.
type Provider struct {
	client *anthropic.Client
	logger *slog.Logger
}

// NewProvider creates a new Anthropic provider with the given API key.
func NewProvider(apiKey string, opts ...option.RequestOption) (*Provider, error) {
	if apiKey == "" {
		return nil, streamui.ErrInvalidAPIKey
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)

	return &Provider{
		client: &client,
		logger: logging.WithComponent("anthropic"),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() streamui.ProviderID {
	return streamui.ProviderAnthropic
}

// SupportsModel returns true if this provider supports the given model.
// Anthropic models start with "claude-"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "claude-")
}
