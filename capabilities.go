package streamui

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/haowjy/meridian-streamui-go/logging"
)

//go:embed capabilities/*.yaml
var capabilitiesFS embed.FS

// Capabilities are MODEL METADATA for display and warnings. They never block a
// request: provider APIs remain the source of truth for what a model accepts.
//
// The embedded catalog may lag behind providers. Override it with
// LoadCapabilitiesFromFile or RegisterProviderCapabilities.

// ProviderCapabilities represents the full capability configuration for a provider
type ProviderCapabilities struct {
	Version     string                     `yaml:"version"`      // Semantic version (e.g., "1.0.0")
	LastUpdated string                     `yaml:"last_updated"` // ISO 8601 date (e.g., "2025-01-15")
	Provider    string                     `yaml:"provider"`
	Models      map[string]ModelCapability `yaml:"models"`
	Constraints ProviderConstraints        `yaml:"constraints"`
}

// ModelCapability represents the capabilities of a specific model
type ModelCapability struct {
	ContextWindow   int           `yaml:"context_window"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Features        ModelFeatures `yaml:"features"`
	Pricing         PricingInfo   `yaml:"pricing"`
}

// ModelFeatures indicates which features a model supports
type ModelFeatures struct {
	Vision    bool `yaml:"vision"`
	Tools     bool `yaml:"tools"`
	Streaming bool `yaml:"streaming"`
}

// PricingInfo contains model pricing information
type PricingInfo struct {
	InputPer1M      float64 `yaml:"input_per_1m"`
	OutputPer1M     float64 `yaml:"output_per_1m"`
	CacheWritePer1M float64 `yaml:"cache_write_per_1m"`
	CacheReadPer1M  float64 `yaml:"cache_read_per_1m"`
}

// ProviderConstraints defines provider-wide parameter limits
type ProviderConstraints struct {
	TemperatureMin float64 `yaml:"temperature_min"`
	TemperatureMax float64 `yaml:"temperature_max"`
}

// Warning is a non-blocking note about a model choice.
type Warning struct {
	Provider string
	Model    string
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s/%s: %s", w.Provider, w.Model, w.Message)
}

// CapabilityRegistry manages provider capabilities
type CapabilityRegistry struct {
	capabilities map[string]*ProviderCapabilities
	mu           sync.RWMutex
}

var (
	globalRegistry     *CapabilityRegistry
	globalRegistryOnce sync.Once
)

// GetCapabilityRegistry returns the global capability registry (singleton)
func GetCapabilityRegistry() *CapabilityRegistry {
	globalRegistryOnce.Do(func() {
		globalRegistry = &CapabilityRegistry{
			capabilities: make(map[string]*ProviderCapabilities),
		}
		if err := globalRegistry.loadEmbedded(); err != nil {
			// Missing capabilities only degrade warnings
			logging.WithComponent("capabilities").Warn("failed to load embedded capabilities", "error", err)
		}
	})
	return globalRegistry
}

// loadEmbedded loads every embedded provider YAML
func (r *CapabilityRegistry) loadEmbedded() error {
	files, err := capabilitiesFS.ReadDir("capabilities")
	if err != nil {
		return fmt.Errorf("failed to list embedded capabilities: %w", err)
	}

	for _, f := range files {
		data, err := capabilitiesFS.ReadFile(path.Join("capabilities", f.Name()))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Name(), err)
		}
		if err := r.load(data); err != nil {
			return fmt.Errorf("%s: %w", f.Name(), err)
		}
	}
	return nil
}

func (r *CapabilityRegistry) load(data []byte) error {
	var caps ProviderCapabilities
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return fmt.Errorf("failed to unmarshal capabilities: %w", err)
	}
	if caps.Provider == "" {
		return fmt.Errorf("capabilities file has no provider")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[caps.Provider] = &caps

	return nil
}

// GetProviderCapabilities returns capabilities for a provider
func (r *CapabilityRegistry) GetProviderCapabilities(provider string) (*ProviderCapabilities, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps, ok := r.capabilities[provider]
	if !ok {
		return nil, fmt.Errorf("no capabilities found for provider: %s", provider)
	}
	return caps, nil
}

// GetModelCapability returns capabilities for a specific model
func (r *CapabilityRegistry) GetModelCapability(provider, model string) (*ModelCapability, error) {
	providerCaps, err := r.GetProviderCapabilities(provider)
	if err != nil {
		return nil, err
	}

	modelCap, ok := providerCaps.Models[model]
	if !ok {
		return nil, fmt.Errorf("model %s not found for provider %s", model, provider)
	}
	return &modelCap, nil
}

// SupportsModel checks if a provider's catalog lists a model
func (r *CapabilityRegistry) SupportsModel(provider, model string) bool {
	_, err := r.GetModelCapability(provider, model)
	return err == nil
}

// SupportsTools checks if a model supports tools
func (r *CapabilityRegistry) SupportsTools(provider, model string) bool {
	modelCap, err := r.GetModelCapability(provider, model)
	if err != nil {
		return false
	}
	return modelCap.Features.Tools
}

// SupportsStreaming checks if a model supports streaming responses
func (r *CapabilityRegistry) SupportsStreaming(provider, model string) bool {
	modelCap, err := r.GetModelCapability(provider, model)
	if err != nil {
		return false
	}
	return modelCap.Features.Streaming
}

// Models returns the catalog's model names for a provider, sorted.
func (r *CapabilityRegistry) Models(provider string) []string {
	caps, err := r.GetProviderCapabilities(provider)
	if err != nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(caps.Models))
	for name := range caps.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckModel returns warnings for a model that a UI-tool request would use.
// A nil result means the catalog has nothing to say against it.
func (r *CapabilityRegistry) CheckModel(provider, model string) []Warning {
	if !r.SupportsModel(provider, model) {
		return []Warning{{
			Provider: provider,
			Model:    model,
			Message:  "model is not in the capability catalog; tool support is unverified",
		}}
	}

	var warnings []Warning
	if !r.SupportsTools(provider, model) {
		warnings = append(warnings, Warning{
			Provider: provider,
			Model:    model,
			Message:  "model does not support tools; responses will always be text",
		})
	}
	if !r.SupportsStreaming(provider, model) {
		warnings = append(warnings, Warning{
			Provider: provider,
			Model:    model,
			Message:  "model does not support streaming",
		})
	}
	return warnings
}

// LoadCapabilitiesFromFile loads provider capabilities from a YAML file.
// The file format matches the embedded YAML structure.
func (r *CapabilityRegistry) LoadCapabilitiesFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read capabilities file: %w", err)
	}
	return r.load(data)
}

// RegisterProviderCapabilities programmatically registers provider capabilities.
func (r *CapabilityRegistry) RegisterProviderCapabilities(provider string, caps *ProviderCapabilities) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[provider] = caps
}

// LoadCapabilitiesFromFile is a convenience function that calls the global registry's LoadCapabilitiesFromFile.
func LoadCapabilitiesFromFile(path string) error {
	return GetCapabilityRegistry().LoadCapabilitiesFromFile(path)
}

// RegisterProviderCapabilities is a convenience function that calls the global registry's RegisterProviderCapabilities.
func RegisterProviderCapabilities(provider string, caps *ProviderCapabilities) {
	GetCapabilityRegistry().RegisterProviderCapabilities(provider, caps)
}
