package anthropic

import (
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	streamui "github.com/haowjy/meridian-streamui-go"
)

// convertToAnthropicMessages converts library messages to Anthropic SDK format.
func convertToAnthropicMessages(messages []streamui.Message) ([]anthropic.MessageParam, error) {
	merged := mergeConsecutiveSameRoleMessages(messages)
	result := make([]anthropic.MessageParam, 0, len(merged))

	for i, msg := range merged {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Blocks))

		for j, block := range msg.Blocks {
			switch block.BlockType {
			case streamui.BlockTypeText:
				if block.TextContent == nil {
					return nil, fmt.Errorf("message %d, block %d: text block missing text_content", i, j)
				}
				blocks = append(blocks, anthropic.NewTextBlock(*block.TextContent))

			case streamui.BlockTypeToolUse:
				toolUseID, ok := block.GetToolUseID()
				if !ok || toolUseID == "" {
					return nil, fmt.Errorf("message %d, block %d: tool_use block missing tool_use_id", i, j)
				}
				toolName, ok := block.GetToolName()
				if !ok || toolName == "" {
					return nil, fmt.Errorf("message %d, block %d: tool_use block missing tool_name", i, j)
				}
				input, _ := block.GetToolInput()
				blocks = append(blocks, anthropic.NewToolUseBlock(toolUseID, input, toolName))

			default:
				// Other block types have no Anthropic request form here
			}
		}

		var message anthropic.MessageParam
		switch msg.Role {
		case streamui.RoleUser:
			message = anthropic.NewUserMessage(blocks...)
		case streamui.RoleAssistant:
			message = anthropic.NewAssistantMessage(blocks...)
		default:
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, msg.Role)
		}

		result = append(result, message)
	}

	return result, nil
}

// mergeConsecutiveSameRoleMessages joins adjacent messages with the same role.
// Anthropic requires user and assistant turns to alternate.
func mergeConsecutiveSameRoleMessages(messages []streamui.Message) []streamui.Message {
	if len(messages) == 0 {
		return messages
	}

	merged := make([]streamui.Message, 0, len(messages))
	for _, msg := range messages {
		last := len(merged) - 1
		if last >= 0 && merged[last].Role == msg.Role {
			merged[last].Blocks = append(merged[last].Blocks, msg.Blocks...)
			continue
		}
		merged = append(merged, streamui.Message{
			Role:   msg.Role,
			Blocks: append([]*streamui.Block(nil), msg.Blocks...),
		})
	}
	return merged
}

// convertError classifies an SDK error into the library error taxonomy.
func convertError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		pe := streamui.NewProviderError(streamui.ProviderAnthropic, apiErr.StatusCode, apiErr.Error())
		return fmt.Errorf("anthropic API call failed: %w", pe)
	}
	return fmt.Errorf("anthropic streaming error: %w", err)
}
