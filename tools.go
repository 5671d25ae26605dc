package streamui

import (
	"errors"
	"fmt"
)

// ToolChoiceMode controls tool selection behavior
type ToolChoiceMode string

const (
	ToolChoiceModeAuto     ToolChoiceMode = "auto"     // Model decides whether to use tools
	ToolChoiceModeRequired ToolChoiceMode = "required" // Model must use a tool
	ToolChoiceModeNone     ToolChoiceMode = "none"     // Model cannot use tools
	ToolChoiceModeSpecific ToolChoiceMode = "specific" // Model must use specific tool
)

// FunctionDetails represents the function definition within a tool (OpenAI format).
type FunctionDetails struct {
	Name        string                 `json:"name"`                  // Function name (required)
	Description string                 `json:"description,omitempty"` // What the function does
	Parameters  map[string]interface{} `json:"parameters"`            // JSON Schema for parameters
}

// Tool represents a function tool in the OpenAI function format.
// Adapters convert it:
//   - OpenAI: use directly
//   - Anthropic: flatten and rename (parameters → input_schema)
type Tool struct {
	Type     string          `json:"type"` // Always "function"
	Function FunctionDetails `json:"function"`
}

// Validate checks if the Tool is properly configured
func (t *Tool) Validate() error {
	if t.Type == "" {
		return errors.New("tool type is required")
	}

	if t.Type != "function" {
		return fmt.Errorf("unsupported tool type: %s (only 'function' is supported)", t.Type)
	}

	if t.Function.Name == "" {
		return errors.New("function name is required")
	}

	if t.Function.Parameters == nil {
		return errors.New("function parameters are required")
	}

	if schemaType, ok := t.Function.Parameters["type"].(string); !ok || schemaType != "object" {
		return errors.New("function parameters must be a JSON schema with type 'object'")
	}

	return nil
}

// RequiredParams returns the schema's "required" list. Both []string and
// []interface{} (as decoded from JSON) are accepted.
func (t *Tool) RequiredParams() []string {
	switch required := t.Function.Parameters["required"].(type) {
	case []string:
		return required
	case []interface{}:
		out := make([]string, 0, len(required))
		for _, v := range required {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// NewCustomTool creates a function tool.
//
// Example parameters:
//
//	map[string]interface{}{
//	  "type": "object",
//	  "properties": map[string]interface{}{
//	    "location": map[string]interface{}{"type": "string"},
//	  },
//	  "required": []string{"location"},
//	}
func NewCustomTool(name string, description string, parameters map[string]interface{}) (*Tool, error) {
	if name == "" {
		return nil, errors.New("tool name is required")
	}

	if description == "" {
		return nil, errors.New("tool description is required")
	}

	if parameters == nil {
		return nil, errors.New("parameters are required")
	}

	tool := &Tool{
		Type: "function",
		Function: FunctionDetails{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}

	if err := tool.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create custom tool: %w", err)
	}

	return tool, nil
}

// ToolChoice specifies tool selection behavior
type ToolChoice struct {
	Mode     ToolChoiceMode // Selection mode
	ToolName *string        // Required when Mode is ToolChoiceModeSpecific
}

// Validate checks if the ToolChoice is properly configured
func (tc *ToolChoice) Validate() error {
	switch tc.Mode {
	case ToolChoiceModeAuto, ToolChoiceModeRequired, ToolChoiceModeNone:
		return nil
	case ToolChoiceModeSpecific:
		if tc.ToolName == nil || *tc.ToolName == "" {
			return errors.New("tool_name is required when mode is 'specific'")
		}
		return nil
	default:
		return fmt.Errorf("invalid tool choice mode: %s", tc.Mode)
	}
}

// NewToolChoice creates a new ToolChoice with the specified mode
func NewToolChoice(mode ToolChoiceMode) (*ToolChoice, error) {
	tc := &ToolChoice{
		Mode: mode,
	}

	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tool choice: %w", err)
	}

	return tc, nil
}

// NewSpecificToolChoice creates a ToolChoice for a specific tool
func NewSpecificToolChoice(toolName string) (*ToolChoice, error) {
	tc := &ToolChoice{
		Mode:     ToolChoiceModeSpecific,
		ToolName: &toolName,
	}

	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid specific tool choice: %w", err)
	}

	return tc, nil
}
