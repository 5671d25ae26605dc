package main

import (
	"errors"
	"testing"

	streamui "github.com/haowjy/meridian-streamui-go"
	"github.com/haowjy/meridian-streamui-go/config"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantName streamui.ProviderID
		wantErr  error
	}{
		{"lorem", config.Config{Provider: "lorem"}, streamui.ProviderLorem, nil},
		{"openai", config.Config{Provider: "openai", OpenAI: config.OpenAIConfig{APIKey: "sk-test"}}, streamui.ProviderOpenAI, nil},
		{"anthropic", config.Config{Provider: "anthropic", Anthropic: config.AnthropicConfig{APIKey: "sk-ant"}}, streamui.ProviderAnthropic, nil},
		{"openai without key", config.Config{Provider: "openai"}, "", streamui.ErrInvalidAPIKey},
		{"anthropic without key", config.Config{Provider: "anthropic"}, "", streamui.ErrInvalidAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newProvider(&tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("newProvider failed: %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %s, want %s", p.Name(), tt.wantName)
			}
		})
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := newProvider(&config.Config{Provider: "gemini"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
