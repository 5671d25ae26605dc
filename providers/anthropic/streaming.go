package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	streamui "github.com/haowjy/meridian-streamui-go"
)

// StreamResponse generates a streaming response from Claude.
// Deltas are forwarded as they arrive; each content block is emitted whole
// when Anthropic reports content_block_stop.
func (p *Provider) StreamResponse(ctx context.Context, req *streamui.GenerateRequest) (<-chan streamui.StreamEvent, error) {
	if !p.SupportsModel(req.Model) {
		return nil, &streamui.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by Anthropic (must start with 'claude-')",
			Err:      streamui.ErrInvalidModel,
		}
	}

	apiParams, err := buildMessageParams(req)
	if err != nil {
		return nil, err
	}

	eventChan := make(chan streamui.StreamEvent, 10) // Buffered to prevent blocking

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

		p.logger.Debug("stream started", "model", req.Model, "tools", len(apiParams.Tools))

		stream := p.client.Messages.NewStreaming(ctx, apiParams)
		defer stream.Close()

		// Accumulator for final message metadata
		message := anthropic.Message{}
		blocks := newBlockAccumulator()

		for stream.Next() {
			event := stream.Current()

			if err := message.Accumulate(event); err != nil {
				send(streamui.StreamEvent{Error: fmt.Errorf("failed to accumulate message: %w", err)})
				return
			}

			for _, ev := range blocks.handle(event) {
				if !send(ev) || ev.Error != nil {
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

		metadata := &streamui.StreamMetadata{
			Model:        string(message.Model),
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
			StopReason:   string(message.StopReason),
		}

		responseMetadata := make(map[string]interface{})
		if message.StopSequence != "" {
			responseMetadata["stop_sequence"] = message.StopSequence
		}
		if message.Usage.CacheCreationInputTokens > 0 {
			responseMetadata["cache_creation_input_tokens"] = int(message.Usage.CacheCreationInputTokens)
		}
		if message.Usage.CacheReadInputTokens > 0 {
			responseMetadata["cache_read_input_tokens"] = int(message.Usage.CacheReadInputTokens)
		}
		metadata.ResponseMetadata = responseMetadata

		p.logger.Debug("stream finished", "model", metadata.Model, "stop_reason", metadata.StopReason,
			"input_tokens", metadata.InputTokens, "output_tokens", metadata.OutputTokens)

		send(streamui.StreamEvent{Metadata: metadata})
	}()

	return eventChan, nil
}

// pendingBlock is a content block that has started but not stopped.
type pendingBlock struct {
	blockType string
	id        string
	name      string
	text      strings.Builder
	json      strings.Builder
}

// blockAccumulator turns Anthropic stream events into library deltas and
// complete blocks, tracking open blocks by index.
type blockAccumulator struct {
	open     map[int]*pendingBlock
	sequence int
}

func newBlockAccumulator() *blockAccumulator {
	return &blockAccumulator{open: make(map[int]*pendingBlock)}
}

// handle returns the library events for one Anthropic stream event.
//
// Anthropic stream events include:
// - MessageStart: Contains message metadata (id, model, role)
// - ContentBlockStart: New content block started (index, type)
// - ContentBlockDelta: Incremental content for current block (text_delta, input_json_delta)
// - ContentBlockStop: Current block finished
// - MessageDelta: Message-level delta (stop_reason, stop_sequence)
// - MessageStop: Streaming complete
func (a *blockAccumulator) handle(event anthropic.MessageStreamEventUnion) []streamui.StreamEvent {
	switch e := event.AsAny().(type) {
	case anthropic.ContentBlockStartEvent:
		index := int(e.Index)
		pb := &pendingBlock{blockType: string(e.ContentBlock.Type)}
		a.open[index] = pb

		blockType := pb.blockType
		delta := &streamui.BlockDelta{
			BlockIndex: index,
			BlockType:  &blockType,
		}

		switch pb.blockType {
		case streamui.BlockTypeText:
			delta.DeltaType = streamui.DeltaTypeText
		case streamui.BlockTypeToolUse:
			pb.id = e.ContentBlock.ID
			pb.name = e.ContentBlock.Name
			delta.DeltaType = streamui.DeltaTypeToolCallStart
			delta.ToolCallID = &pb.id
			delta.ToolCallName = &pb.name
		default:
			// Thinking and server tool blocks are not surfaced
			return nil
		}
		return []streamui.StreamEvent{{Delta: delta}}

	case anthropic.ContentBlockDeltaEvent:
		index := int(e.Index)
		pb, ok := a.open[index]
		if !ok {
			return nil
		}

		switch e.Delta.Type {
		case "text_delta":
			text := e.Delta.Text
			pb.text.WriteString(text)
			return []streamui.StreamEvent{{Delta: &streamui.BlockDelta{
				BlockIndex: index,
				DeltaType:  streamui.DeltaTypeText,
				TextDelta:  &text,
			}}}

		case "input_json_delta":
			partial := e.Delta.PartialJSON
			pb.json.WriteString(partial)
			return []streamui.StreamEvent{{Delta: &streamui.BlockDelta{
				BlockIndex: index,
				DeltaType:  streamui.DeltaTypeJSON,
				JSONDelta:  &partial,
			}}}
		}
		return nil

	case anthropic.ContentBlockStopEvent:
		index := int(e.Index)
		pb, ok := a.open[index]
		if !ok {
			return nil
		}
		delete(a.open, index)

		block, err := a.finish(pb)
		if err != nil {
			return []streamui.StreamEvent{{Error: err}}
		}
		if block == nil {
			return nil
		}
		return []streamui.StreamEvent{{Block: block}}

	default:
		// MessageStart, MessageDelta and MessageStop feed metadata through Accumulate
		return nil
	}
}

// finish builds the complete library block for a stopped Anthropic block.
func (a *blockAccumulator) finish(pb *pendingBlock) (*streamui.Block, error) {
	var block *streamui.Block

	switch pb.blockType {
	case streamui.BlockTypeText:
		block = streamui.NewTextBlock(a.sequence, pb.text.String())

	case streamui.BlockTypeToolUse:
		input := map[string]interface{}{}
		if raw := strings.TrimSpace(pb.json.String()); raw != "" {
			if err := json.Unmarshal([]byte(raw), &input); err != nil {
				return nil, fmt.Errorf("tool %s: invalid input JSON: %w", pb.name, err)
			}
		}
		block = streamui.NewToolUseBlock(a.sequence, pb.id, pb.name, input)

	default:
		return nil, nil
	}

	a.sequence++
	block.SetProvider(streamui.ProviderAnthropic)
	return block, nil
}
