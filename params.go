package streamui

import (
	"fmt"
)

// RequestParams represents the request parameters understood by every provider.
// All fields are optional pointers to distinguish "not set" from "set to zero value".
type RequestParams struct {
	// MaxTokens sets the maximum number of tokens to generate
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0-2.0)
	Temperature *float64 `json:"temperature,omitempty"`

	// System prompt
	System *string `json:"system,omitempty"`

	// Tools available for the model to use
	Tools []Tool `json:"tools,omitempty"`

	// ToolChoice controls whether/which tools to use; nil lets the provider decide
	ToolChoice *ToolChoice `json:"tool_choice,omitempty"`

	// ParallelToolCalls allows the model to call several tools in one turn
	ParallelToolCalls *bool `json:"parallel_tool_calls,omitempty"`
}

// ValidateRequestParams validates request parameters
func ValidateRequestParams(params *RequestParams) error {
	if params == nil {
		return nil // nil params is valid
	}

	if params.Temperature != nil {
		if *params.Temperature < 0.0 || *params.Temperature > 2.0 {
			return &ValidationError{
				Field:  "temperature",
				Value:  *params.Temperature,
				Reason: "must be between 0.0 and 2.0",
				Err:    ErrInvalidRequest,
			}
		}
	}

	if params.MaxTokens != nil {
		if *params.MaxTokens < 1 {
			return &ValidationError{
				Field:  "max_tokens",
				Value:  *params.MaxTokens,
				Reason: "must be positive",
				Err:    ErrInvalidRequest,
			}
		}
	}

	for i := range params.Tools {
		if err := params.Tools[i].Validate(); err != nil {
			return fmt.Errorf("tool %d: %w", i, err)
		}
	}

	if params.ToolChoice != nil {
		if err := params.ToolChoice.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// GetMaxTokens returns max_tokens with default fallback
func (rp *RequestParams) GetMaxTokens(defaultValue int) int {
	if rp.MaxTokens != nil {
		return *rp.MaxTokens
	}
	return defaultValue
}

// GetTemperature returns temperature with default fallback
func (rp *RequestParams) GetTemperature(defaultValue float64) float64 {
	if rp.Temperature != nil {
		return *rp.Temperature
	}
	return defaultValue
}
