package streamui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSupportsTools_KnownModel(t *testing.T) {
	registry := GetCapabilityRegistry()

	tests := []struct {
		name     string
		provider string
		model    string
		expected bool
	}{
		{
			name:     "gpt-4o-mini supports tools",
			provider: "openai",
			model:    "gpt-4o-mini",
			expected: true,
		},
		{
			name:     "Claude Haiku 4.5 supports tools",
			provider: "anthropic",
			model:    "claude-haiku-4-5-20251001",
			expected: true,
		},
		{
			name:     "lorem-fast supports tools",
			provider: "lorem",
			model:    "lorem-fast",
			expected: true,
		},
		{
			name:     "lorem-cutoff has no tools",
			provider: "lorem",
			model:    "lorem-cutoff",
			expected: false,
		},
		{
			name:     "unknown model",
			provider: "openai",
			model:    "gpt-unknown",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			supports := registry.SupportsTools(tt.provider, tt.model)
			if supports != tt.expected {
				t.Errorf("expected SupportsTools=%v, got %v", tt.expected, supports)
			}
		})
	}
}

func TestGetModelCapability_KnownModel(t *testing.T) {
	registry := GetCapabilityRegistry()

	modelCap, err := registry.GetModelCapability("anthropic", "claude-haiku-4-5-20251001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if modelCap.ContextWindow != 200000 {
		t.Errorf("expected context window 200000, got %d", modelCap.ContextWindow)
	}

	if modelCap.MaxOutputTokens != 64000 {
		t.Errorf("expected max output tokens 64000, got %d", modelCap.MaxOutputTokens)
	}

	if !modelCap.Features.Streaming {
		t.Error("expected streaming feature to be enabled")
	}
}

func TestGetModelCapability_UnknownModel(t *testing.T) {
	registry := GetCapabilityRegistry()

	_, err := registry.GetModelCapability("anthropic", "claude-unknown-model")
	if err == nil {
		t.Fatal("expected error for unknown model, got nil")
	}
}

func TestProviderDefaultModelsAreCatalogued(t *testing.T) {
	registry := GetCapabilityRegistry()

	for _, id := range []ProviderID{ProviderOpenAI, ProviderAnthropic, ProviderLorem} {
		t.Run(id.String(), func(t *testing.T) {
			if !registry.SupportsModel(id.String(), id.DefaultModel()) {
				t.Errorf("default model %q missing from %s catalog", id.DefaultModel(), id)
			}
		})
	}
}

func TestModels_Sorted(t *testing.T) {
	registry := GetCapabilityRegistry()

	models := registry.Models("lorem")
	if len(models) == 0 {
		t.Fatal("expected lorem models")
	}
	for i := 1; i < len(models); i++ {
		if models[i-1] > models[i] {
			t.Errorf("models not sorted: %v", models)
		}
	}

	if got := registry.Models("nope"); got != nil {
		t.Errorf("expected nil for unknown provider, got %v", got)
	}
}

func TestCheckModel(t *testing.T) {
	registry := GetCapabilityRegistry()

	tests := []struct {
		name         string
		provider     string
		model        string
		wantWarnings int
		wantContains string
	}{
		{
			name:         "known tool model",
			provider:     "openai",
			model:        "gpt-4o-mini",
			wantWarnings: 0,
		},
		{
			name:         "model without tools",
			provider:     "lorem",
			model:        "lorem-cutoff",
			wantWarnings: 1,
			wantContains: "does not support tools",
		},
		{
			name:         "unknown model",
			provider:     "anthropic",
			model:        "claude-next",
			wantWarnings: 1,
			wantContains: "not in the capability catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := registry.CheckModel(tt.provider, tt.model)
			if len(warnings) != tt.wantWarnings {
				t.Fatalf("expected %d warnings, got %d: %v", tt.wantWarnings, len(warnings), warnings)
			}
			if tt.wantContains != "" && !strings.Contains(warnings[0].String(), tt.wantContains) {
				t.Errorf("warning %q does not contain %q", warnings[0], tt.wantContains)
			}
		})
	}
}

func TestLoadCapabilitiesFromFile(t *testing.T) {
	registry := &CapabilityRegistry{capabilities: make(map[string]*ProviderCapabilities)}

	path := filepath.Join(t.TempDir(), "gateway.yaml")
	data := `
version: "1.0.0"
provider: gateway
models:
  local-model:
    context_window: 4096
    features:
      tools: true
      streaming: true
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := registry.LoadCapabilitiesFromFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !registry.SupportsTools("gateway", "local-model") {
		t.Error("expected loaded model to support tools")
	}

	if err := registry.LoadCapabilitiesFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRegisterProviderCapabilities(t *testing.T) {
	registry := &CapabilityRegistry{capabilities: make(map[string]*ProviderCapabilities)}

	registry.RegisterProviderCapabilities("custom", &ProviderCapabilities{
		Provider: "custom",
		Models: map[string]ModelCapability{
			"m1": {Features: ModelFeatures{Tools: false, Streaming: true}},
		},
	})

	if !registry.SupportsStreaming("custom", "m1") {
		t.Error("expected registered model to support streaming")
	}
	if registry.SupportsTools("custom", "m1") {
		t.Error("expected registered model to lack tools")
	}
}

func TestCheckModel_NoStreaming(t *testing.T) {
	registry := &CapabilityRegistry{capabilities: make(map[string]*ProviderCapabilities)}
	registry.RegisterProviderCapabilities("custom", &ProviderCapabilities{
		Provider: "custom",
		Models: map[string]ModelCapability{
			"batch-only": {Features: ModelFeatures{Tools: true, Streaming: false}},
		},
	})

	warnings := registry.CheckModel("custom", "batch-only")
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "does not support streaming") {
		t.Fatalf("expected a single streaming warning, got %v", warnings)
	}
}
