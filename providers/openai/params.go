package openai

import (
	"fmt"

	"github.com/openai/openai-go"

	streamui "github.com/haowjy/meridian-streamui-go"
)

// buildChatParams constructs chat completion parameters from a GenerateRequest.
func buildChatParams(req *streamui.GenerateRequest) (openai.ChatCompletionNewParams, error) {
	params := req.Params
	if params == nil {
		params = &streamui.RequestParams{}
	}

	messages, err := convertMessages(req.Messages, params.System)
	if err != nil {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("failed to convert messages: %w", err)
	}

	chatParams := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}

	if params.MaxTokens != nil {
		chatParams.MaxCompletionTokens = openai.Int(int64(*params.MaxTokens))
	}
	if params.Temperature != nil {
		chatParams.Temperature = openai.Float(*params.Temperature)
	}

	if len(params.Tools) > 0 {
		chatParams.Tools = convertTools(params.Tools)
		if params.ToolChoice != nil {
			chatParams.ToolChoice = convertToolChoice(params.ToolChoice)
		}
		if params.ParallelToolCalls != nil {
			chatParams.ParallelToolCalls = openai.Bool(*params.ParallelToolCalls)
		}
	}

	return chatParams, nil
}

// convertMessages converts library messages to chat completion messages.
// The system prompt, when set, goes first.
func convertMessages(messages []streamui.Message, system *string) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != nil && *system != "" {
		result = append(result, openai.SystemMessage(*system))
	}

	for i, msg := range messages {
		var text string
		for _, block := range msg.Blocks {
			if block.BlockType == streamui.BlockTypeText {
				text += block.Text()
			}
		}

		switch msg.Role {
		case streamui.RoleUser:
			result = append(result, openai.UserMessage(text))
		case streamui.RoleAssistant:
			result = append(result, openai.AssistantMessage(text))
		default:
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, msg.Role)
		}
	}

	return result, nil
}

// convertTools converts library tools to chat completion function tools.
// The library Tool is already in OpenAI's function format.
func convertTools(tools []streamui.Tool) []openai.ChatCompletionToolParam {
	result := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, tool := range tools {
		fn := openai.FunctionDefinitionParam{
			Name:       tool.Function.Name,
			Parameters: openai.FunctionParameters(tool.Function.Parameters),
		}
		if tool.Function.Description != "" {
			fn.Description = openai.String(tool.Function.Description)
		}
		result = append(result, openai.ChatCompletionToolParam{Function: fn})
	}
	return result
}

// convertToolChoice maps library tool choice modes to OpenAI's.
func convertToolChoice(choice *streamui.ToolChoice) openai.ChatCompletionToolChoiceOptionUnionParam {
	switch choice.Mode {
	case streamui.ToolChoiceModeNone:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("none")}
	case streamui.ToolChoiceModeRequired:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("required")}
	case streamui.ToolChoiceModeSpecific:
		return openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: *choice.ToolName},
			},
		}
	default:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String("auto")}
	}
}
