package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go"

	streamui "github.com/haowjy/meridian-streamui-go"
)

// StreamResponse streams a chat completion.
// Text deltas are forwarded live. Complete blocks follow once the model is
// done: the text block first, then one tool_use block per tool call.
func (p *Provider) StreamResponse(ctx context.Context, req *streamui.GenerateRequest) (<-chan streamui.StreamEvent, error) {
	if !p.SupportsModel(req.Model) {
		return nil, &streamui.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by OpenAI",
			Err:      streamui.ErrInvalidModel,
		}
	}

	chatParams, err := buildChatParams(req)
	if err != nil {
		return nil, err
	}

	eventChan := make(chan streamui.StreamEvent, 10)

	go func() {
		defer close(eventChan)

		send := func(ev streamui.StreamEvent) bool {
			select {
			case eventChan <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		p.logger.Debug("stream started", "model", req.Model, "tools", len(chatParams.Tools))

		stream := p.client.Chat.Completions.NewStreaming(ctx, chatParams)
		defer stream.Close()

		acc := newChunkAccumulator()
		for stream.Next() {
			for _, ev := range acc.add(stream.Current()) {
				if !send(ev) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			if ctx.Err() != nil {
				return
			}
			send(streamui.StreamEvent{Error: convertError(err)})
			return
		}

		blocks, err := acc.blocks()
		if err != nil {
			send(streamui.StreamEvent{Error: err})
			return
		}
		for _, block := range blocks {
			if !send(streamui.StreamEvent{Block: block}) {
				return
			}
		}

		metadata := acc.metadata(req.Model)
		p.logger.Debug("stream finished", "model", metadata.Model, "stop_reason", metadata.StopReason,
			"input_tokens", metadata.InputTokens, "output_tokens", metadata.OutputTokens)

		send(streamui.StreamEvent{Metadata: metadata})
	}()

	return eventChan, nil
}

// pendingToolCall collects the fragments of one streamed tool call.
type pendingToolCall struct {
	id        string
	name      string
	arguments strings.Builder
}

// chunkAccumulator folds chat completion chunks into library events.
// Text lives at block index 0; tool call i lives at block index i+1.
type chunkAccumulator struct {
	text         strings.Builder
	toolCalls    map[int64]*pendingToolCall
	model        string
	finishReason string
	inputTokens  int64
	outputTokens int64
}

func newChunkAccumulator() *chunkAccumulator {
	return &chunkAccumulator{toolCalls: make(map[int64]*pendingToolCall)}
}

// add records one chunk and returns the deltas it carries.
func (a *chunkAccumulator) add(chunk openai.ChatCompletionChunk) []streamui.StreamEvent {
	if chunk.Model != "" {
		a.model = chunk.Model
	}
	if chunk.Usage.PromptTokens > 0 || chunk.Usage.CompletionTokens > 0 {
		a.inputTokens = chunk.Usage.PromptTokens
		a.outputTokens = chunk.Usage.CompletionTokens
	}
	if len(chunk.Choices) == 0 {
		return nil
	}

	choice := chunk.Choices[0]
	if choice.FinishReason != "" {
		a.finishReason = choice.FinishReason
	}

	var events []streamui.StreamEvent

	if content := choice.Delta.Content; content != "" {
		delta := &streamui.BlockDelta{
			BlockIndex: 0,
			DeltaType:  streamui.DeltaTypeText,
			TextDelta:  &content,
		}
		if a.text.Len() == 0 {
			textType := streamui.BlockTypeText
			delta.BlockType = &textType
		}
		a.text.WriteString(content)
		events = append(events, streamui.StreamEvent{Delta: delta})
	}

	for _, tc := range choice.Delta.ToolCalls {
		blockIndex := int(tc.Index) + 1

		call, ok := a.toolCalls[tc.Index]
		if !ok {
			call = &pendingToolCall{}
			a.toolCalls[tc.Index] = call
		}
		if tc.ID != "" {
			call.id = tc.ID
		}
		if tc.Function.Name != "" {
			call.name = tc.Function.Name
		}

		if !ok {
			toolUseType := streamui.BlockTypeToolUse
			id, name := call.id, call.name
			events = append(events, streamui.StreamEvent{Delta: &streamui.BlockDelta{
				BlockIndex:   blockIndex,
				BlockType:    &toolUseType,
				DeltaType:    streamui.DeltaTypeToolCallStart,
				ToolCallID:   &id,
				ToolCallName: &name,
			}})
		}

		if args := tc.Function.Arguments; args != "" {
			call.arguments.WriteString(args)
			events = append(events, streamui.StreamEvent{Delta: &streamui.BlockDelta{
				BlockIndex: blockIndex,
				DeltaType:  streamui.DeltaTypeJSON,
				JSONDelta:  &args,
			}})
		}
	}

	return events
}

// blocks returns the complete blocks in response order.
func (a *chunkAccumulator) blocks() ([]*streamui.Block, error) {
	var blocks []*streamui.Block

	if a.text.Len() > 0 {
		blocks = append(blocks, streamui.NewTextBlock(0, a.text.String()))
	}

	indexes := make([]int64, 0, len(a.toolCalls))
	for idx := range a.toolCalls {
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	for _, idx := range indexes {
		call := a.toolCalls[idx]

		input := map[string]interface{}{}
		if raw := strings.TrimSpace(call.arguments.String()); raw != "" {
			if err := json.Unmarshal([]byte(raw), &input); err != nil {
				return nil, fmt.Errorf("tool %s: invalid arguments JSON: %w", call.name, err)
			}
		}
		blocks = append(blocks, streamui.NewToolUseBlock(len(blocks), call.id, call.name, input))
	}

	for _, block := range blocks {
		block.SetProvider(streamui.ProviderOpenAI)
	}
	return blocks, nil
}

// metadata returns the completion summary.
func (a *chunkAccumulator) metadata(requestedModel string) *streamui.StreamMetadata {
	model := a.model
	if model == "" {
		model = requestedModel
	}
	return &streamui.StreamMetadata{
		Model:            model,
		InputTokens:      int(a.inputTokens),
		OutputTokens:     int(a.outputTokens),
		StopReason:       a.finishReason,
		ResponseMetadata: map[string]interface{}{},
	}
}

// convertError classifies an SDK error into the library error taxonomy.
func convertError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		pe := streamui.NewProviderError(streamui.ProviderOpenAI, apiErr.StatusCode, apiErr.Error())
		return fmt.Errorf("openai API call failed: %w", pe)
	}
	return fmt.Errorf("openai streaming error: %w", err)
}
