package anthropic

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	streamui "github.com/haowjy/meridian-streamui-go"
)

// convertToolsToAnthropicTools converts library Tool format to Anthropic SDK format.
func convertToolsToAnthropicTools(tools []streamui.Tool) ([]anthropic.ToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	result := make([]anthropic.ToolUnionParam, 0, len(tools))
	for i := range tools {
		tool, err := convertCustomTool(&tools[i])
		if err != nil {
			return nil, fmt.Errorf("tool %d (%s): %w", i, tools[i].Function.Name, err)
		}
		result = append(result, tool)
	}

	return result, nil
}

// convertCustomTool converts a function tool to Anthropic's custom tool format.
// OpenAI format (tool.Function.Parameters) becomes Anthropic's input_schema.
func convertCustomTool(tool *streamui.Tool) (anthropic.ToolUnionParam, error) {
	if err := tool.Validate(); err != nil {
		return anthropic.ToolUnionParam{}, err
	}

	// Anthropic wants the properties object on its own; "required" is a
	// direct field and everything else rides in ExtraFields. Type elides to
	// "object".
	schema := anthropic.ToolInputSchemaParam{
		Properties:  tool.Function.Parameters["properties"],
		Required:    tool.RequiredParams(),
		ExtraFields: make(map[string]any),
	}

	for key, value := range tool.Function.Parameters {
		if key != "type" && key != "properties" && key != "required" {
			schema.ExtraFields[key] = value
		}
	}

	toolParam := anthropic.ToolUnionParamOfTool(schema, tool.Function.Name)
	if tool.Function.Description != "" {
		toolParam.OfTool.Description = anthropic.String(tool.Function.Description)
	}

	return toolParam, nil
}

// convertToolChoice converts library ToolChoice to Anthropic format.
// Returns nil if neither a choice nor a parallel setting was given.
func convertToolChoice(choice *streamui.ToolChoice, parallel *bool) (*anthropic.ToolChoiceUnionParam, error) {
	if choice == nil {
		if parallel == nil {
			return nil, nil
		}
		choice = &streamui.ToolChoice{Mode: streamui.ToolChoiceModeAuto}
	}

	if err := choice.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tool choice: %w", err)
	}

	disableParallel := parallel != nil && !*parallel

	switch choice.Mode {
	case streamui.ToolChoiceModeAuto:
		auto := &anthropic.ToolChoiceAutoParam{}
		if disableParallel {
			auto.DisableParallelToolUse = anthropic.Bool(true)
		}
		return &anthropic.ToolChoiceUnionParam{OfAuto: auto}, nil

	case streamui.ToolChoiceModeRequired:
		// Anthropic calls this "any"
		anyParam := &anthropic.ToolChoiceAnyParam{}
		if disableParallel {
			anyParam.DisableParallelToolUse = anthropic.Bool(true)
		}
		return &anthropic.ToolChoiceUnionParam{OfAny: anyParam}, nil

	case streamui.ToolChoiceModeNone:
		noneParam := anthropic.NewToolChoiceNoneParam()
		return &anthropic.ToolChoiceUnionParam{OfNone: &noneParam}, nil

	case streamui.ToolChoiceModeSpecific:
		unionParam := anthropic.ToolChoiceParamOfTool(*choice.ToolName)
		if disableParallel {
			unionParam.OfTool.DisableParallelToolUse = anthropic.Bool(true)
		}
		return &unionParam, nil

	default:
		return nil, fmt.Errorf("unsupported tool choice mode: %s", choice.Mode)
	}
}
