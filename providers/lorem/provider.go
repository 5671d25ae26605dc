package lorem

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	streamui "github.com/haowjy/meridian-streamui-go"
	"github.com/haowjy/meridian-streamui-go/logging"
)

// defaultWords is the length of a text answer when max_tokens allows it.
const defaultWords = 20

// fallbackLocation is used when a weather prompt names no place.
const fallbackLocation = "Earth"

// placePattern matches "in Paris" / "for New York" style phrases.
var placePattern = regexp.MustCompile(`\b(?:[Ii]n|[Ff]or)\s+([A-Z][\p{L}'-]*(?:\s+[A-Z][\p{L}'-]*)*)`)

// Provider is an offline provider that answers with lorem ipsum text.
// Prompts that mention the weather get a call to the first declared tool, so
// the whole UI flow can be exercised without API keys.
//
// A Provider is safe for concurrent use; each stream owns its own generator.
type Provider struct {
	logger *slog.Logger
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{
		logger: logging.WithComponent("lorem"),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() streamui.ProviderID {
	return streamui.ProviderLorem
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-slow", "lorem-instant"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// getStreamDelay returns the delay between words based on the model name.
// - lorem-slow: 2 words/second (500ms per word)
// - lorem-medium: 10 words/second (100ms per word)
// - lorem-fast: 30 words/second (33ms per word)
// - lorem-instant: no delay
// - default: 10 words/second
func getStreamDelay(model string) time.Duration {
	switch {
	case strings.Contains(model, "slow"):
		return 500 * time.Millisecond
	case strings.Contains(model, "fast"):
		return 33 * time.Millisecond
	case strings.Contains(model, "medium"):
		return 100 * time.Millisecond
	case strings.Contains(model, "instant"):
		return 0
	default:
		return 100 * time.Millisecond
	}
}

// isCutoffModel returns true if the model should simulate max_tokens cutoff.
func isCutoffModel(model string) bool {
	return strings.Contains(model, "cutoff") || strings.Contains(model, "small")
}

// StreamResponse streams either a tool call or a lorem ipsum text block.
func (p *Provider) StreamResponse(ctx context.Context, req *streamui.GenerateRequest) (<-chan streamui.StreamEvent, error) {
	if !p.SupportsModel(req.Model) {
		return nil, &streamui.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by Lorem provider (must start with 'lorem-')",
			Err:      streamui.ErrInvalidModel,
		}
	}

	params := req.Params
	if params == nil {
		params = &streamui.RequestParams{}
	}
	if err := streamui.ValidateRequestParams(params); err != nil {
		return nil, err
	}

	maxTokens := params.GetMaxTokens(4096)
	prompt := streamui.LastUserText(req.Messages)
	tool := selectTool(prompt, params)

	eventChan := make(chan streamui.StreamEvent, 10)
	s := &stream{
		ctx:       ctx,
		events:    eventChan,
		delay:     getStreamDelay(req.Model),
		generator: loremgen.New(),
	}

	go func() {
		defer close(eventChan)

		p.logger.Debug("stream started", "model", req.Model, "tools", len(params.Tools), "max_tokens", maxTokens)

		var (
			outputTokens int
			stopReason   string
			err          error
		)
		if tool != nil {
			outputTokens, err = p.streamToolUseBlock(s, 0, tool, toolInput(prompt))
			stopReason = "tool_use"
		} else {
			target := defaultWords
			if maxTokens < target {
				target = maxTokens
			}
			var cutoff bool
			outputTokens, cutoff, err = p.streamTextBlock(s, 0, target, req.Model)
			stopReason = "end_turn"
			if cutoff {
				stopReason = "max_tokens"
			}
		}
		if err != nil {
			s.send(streamui.StreamEvent{Error: err})
			return
		}

		p.logger.Debug("stream finished", "model", req.Model, "stop_reason", stopReason, "output_tokens", outputTokens)

		s.send(streamui.StreamEvent{
			Metadata: &streamui.StreamMetadata{
				Model:        req.Model,
				InputTokens:  estimateTokens(req.Messages),
				OutputTokens: outputTokens,
				StopReason:   stopReason,
				ResponseMetadata: map[string]interface{}{
					"mock":     true,
					"provider": "lorem",
				},
			},
		})
	}()

	return eventChan, nil
}

// selectTool returns the tool to call for a weather prompt, or nil.
func selectTool(prompt string, params *streamui.RequestParams) *streamui.Tool {
	if len(params.Tools) == 0 {
		return nil
	}
	if params.ToolChoice != nil {
		switch params.ToolChoice.Mode {
		case streamui.ToolChoiceModeNone:
			return nil
		case streamui.ToolChoiceModeSpecific:
			for i := range params.Tools {
				if params.Tools[i].Function.Name == *params.ToolChoice.ToolName {
					return &params.Tools[i]
				}
			}
			return nil
		case streamui.ToolChoiceModeRequired:
			return &params.Tools[0]
		}
	}
	if !strings.Contains(strings.ToLower(prompt), "weather") {
		return nil
	}
	return &params.Tools[0]
}

// toolInput builds the arguments for a weather-style tool call.
func toolInput(prompt string) map[string]interface{} {
	return map[string]interface{}{
		"location": extractLocation(prompt),
	}
}

// extractLocation finds the place named in a prompt.
func extractLocation(prompt string) string {
	m := placePattern.FindStringSubmatch(prompt)
	if m == nil {
		return fallbackLocation
	}
	return strings.TrimSpace(m[1])
}

// stream sends events unless the consumer's context is done.
// golorem is not safe for concurrent use, so the generator is per stream.
type stream struct {
	ctx       context.Context
	events    chan<- streamui.StreamEvent
	delay     time.Duration
	generator *loremgen.Lorem
}

func (s *stream) send(ev streamui.StreamEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *stream) sleep(d time.Duration) error {
	if d <= 0 {
		return s.ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// streamTextBlock streams limit words followed by the complete block.
// Returns (word count, cutoff flag, error).
// Cutoff models generate extra words and are cut off at the limit.
func (p *Provider) streamTextBlock(s *stream, blockIndex int, limit int, model string) (int, bool, error) {
	textType := streamui.BlockTypeText
	s.send(streamui.StreamEvent{
		Delta: &streamui.BlockDelta{
			BlockIndex: blockIndex,
			BlockType:  &textType,
		},
	})

	cutoffModel := isCutoffModel(model)
	targetWords := limit
	if cutoffModel {
		// Cutoff models generate 50% more to simulate hitting max_tokens
		targetWords = limit + (limit / 2) + 1
	}

	words := strings.Fields(generateTextWords(s.generator, targetWords))
	if !cutoffModel && len(words) > limit {
		words = words[:limit]
	}

	var sb strings.Builder
	wordsSent := 0
	cutoff := false
	for _, word := range words {
		if cutoffModel && wordsSent >= limit {
			cutoff = true
			break
		}

		delta := word
		if wordsSent > 0 {
			delta = " " + word
		}
		if !s.send(streamui.StreamEvent{
			Delta: &streamui.BlockDelta{
				BlockIndex: blockIndex,
				DeltaType:  streamui.DeltaTypeText,
				TextDelta:  &delta,
			},
		}) {
			return wordsSent, false, s.ctx.Err()
		}
		sb.WriteString(delta)
		wordsSent++

		if err := s.sleep(s.delay); err != nil {
			return wordsSent, false, err
		}
	}

	block := streamui.NewTextBlock(blockIndex, sb.String())
	block.SetProvider(streamui.ProviderLorem)
	s.send(streamui.StreamEvent{Block: block})

	return wordsSent, cutoff, nil
}

// streamToolUseBlock streams a tool_use block with JSON input.
// Returns (token count, error).
func (p *Provider) streamToolUseBlock(s *stream, blockIndex int, tool *streamui.Tool, input map[string]interface{}) (int, error) {
	toolUseType := streamui.BlockTypeToolUse
	toolID := fmt.Sprintf("toolu_%s_%d", tool.Function.Name, blockIndex)
	name := tool.Function.Name

	s.send(streamui.StreamEvent{
		Delta: &streamui.BlockDelta{
			BlockIndex:   blockIndex,
			BlockType:    &toolUseType,
			DeltaType:    streamui.DeltaTypeToolCallStart,
			ToolCallID:   &toolID,
			ToolCallName: &name,
		},
	})

	jsonBytes, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal tool input: %w", err)
	}
	jsonStr := string(jsonBytes)

	// Stream JSON character by character (simulating incremental JSON building)
	for _, char := range jsonStr {
		delta := string(char)
		if !s.send(streamui.StreamEvent{
			Delta: &streamui.BlockDelta{
				BlockIndex: blockIndex,
				DeltaType:  streamui.DeltaTypeJSON,
				JSONDelta:  &delta,
			},
		}) {
			return 0, s.ctx.Err()
		}

		// JSON streams faster than words
		if err := s.sleep(s.delay / 10); err != nil {
			return 0, err
		}
	}

	block := streamui.NewToolUseBlock(blockIndex, toolID, name, input)
	block.SetProvider(streamui.ProviderLorem)
	s.send(streamui.StreamEvent{Block: block})

	// Estimate tokens (rough: 1 token per 4 chars in JSON)
	return len(jsonStr) / 4, nil
}

// generateTextWords generates lorem ipsum text with at least targetWords words.
func generateTextWords(generator *loremgen.Lorem, targetWords int) string {
	var sb strings.Builder
	wordCount := 0

	for wordCount < targetWords {
		sentence := generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")

		wordCount += len(strings.Fields(sentence))
	}

	return strings.TrimSpace(sb.String())
}

// estimateTokens estimates the token count for a list of messages.
// Uses word count as a rough approximation.
func estimateTokens(messages []streamui.Message) int {
	totalWords := 0
	for _, msg := range messages {
		for _, block := range msg.Blocks {
			totalWords += len(strings.Fields(block.Text()))
		}
	}
	return totalWords
}
