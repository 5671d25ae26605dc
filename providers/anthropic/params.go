package anthropic

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	streamui "github.com/haowjy/meridian-streamui-go"
)

// maxTemperature is the upper bound of Anthropic's temperature range.
const maxTemperature = 1.0

// buildMessageParams constructs Anthropic API parameters from a GenerateRequest.
func buildMessageParams(req *streamui.GenerateRequest) (anthropic.MessageNewParams, error) {
	messages, err := convertToAnthropicMessages(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, fmt.Errorf("failed to convert messages: %w", err)
	}

	params := req.Params
	if params == nil {
		params = &streamui.RequestParams{}
	}

	apiParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  messages,
		MaxTokens: int64(params.GetMaxTokens(4096)),
	}

	if params.Temperature != nil {
		if *params.Temperature > maxTemperature {
			return anthropic.MessageNewParams{}, &streamui.ValidationError{
				Field:  "temperature",
				Value:  *params.Temperature,
				Reason: fmt.Sprintf("must be between 0.0 and %.1f for Anthropic", maxTemperature),
				Err:    streamui.ErrInvalidRequest,
			}
		}
		apiParams.Temperature = anthropic.Float(*params.Temperature)
	}

	if params.System != nil && *params.System != "" {
		apiParams.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: *params.System,
			},
		}
	}

	tools, err := convertToolsToAnthropicTools(params.Tools)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}
	apiParams.Tools = tools

	if len(tools) > 0 {
		choice, err := convertToolChoice(params.ToolChoice, params.ParallelToolCalls)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		if choice != nil {
			apiParams.ToolChoice = *choice
		}
	}

	return apiParams, nil
}
