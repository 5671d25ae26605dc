package streamui

// ProviderID represents a unique provider identifier.
type ProviderID string

// Known provider identifiers
const (
	// ProviderOpenAI is OpenAI's chat completions API (and compatible gateways)
	ProviderOpenAI ProviderID = "openai"

	// ProviderAnthropic is Anthropic's Claude API
	ProviderAnthropic ProviderID = "anthropic"

	// ProviderLorem is the offline Lorem provider
	ProviderLorem ProviderID = "lorem"
)

// String returns the string representation of the provider ID
func (p ProviderID) String() string {
	return string(p)
}

// IsValid returns true if the provider ID is a known provider
func (p ProviderID) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderLorem:
		return true
	default:
		return false
	}
}

// DefaultModel returns the model used when none is configured.
func (p ProviderID) DefaultModel() string {
	switch p {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-haiku-4-5-20251001"
	case ProviderLorem:
		return "lorem-fast"
	default:
		return ""
	}
}
