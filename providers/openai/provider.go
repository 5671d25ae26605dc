package openai

import (
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	streamui "github.com/haowjy/meridian-streamui-go"
	"github.com/haowjy/meridian-streamui-go/logging"
)

// Config holds OpenAI provider configuration
type Config struct {
	APIKey string

	// BaseURL points the client at an OpenAI-compatible gateway
	BaseURL string
}

// Provider implements the streamui.Provider interface for OpenAI chat models.
type Provider struct {
	client  openai.Client
	baseURL string
	logger  *slog.Logger
}

// modelPrefixes are the OpenAI model families that accept function tools.
var modelPrefixes = []string{"gpt-", "o1", "o3", "o4", "chatgpt-"}

// NewProvider creates a new OpenAI provider.
func NewProvider(cfg Config, opts ...option.RequestOption) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, streamui.ErrInvalidAPIKey
	}

	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	options = append(options, opts...)

	return &Provider{
		client:  openai.NewClient(options...),
		baseURL: cfg.BaseURL,
		logger:  logging.WithComponent("openai"),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() streamui.ProviderID {
	return streamui.ProviderOpenAI
}

// SupportsModel reports whether the model looks like an OpenAI chat model.
// With a custom base URL any non-empty model is accepted, since gateways
// name models freely.
func (p *Provider) SupportsModel(model string) bool {
	if model == "" {
		return false
	}
	if p.baseURL != "" {
		return true
	}
	for _, prefix := range modelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
