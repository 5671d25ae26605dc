package anthropic

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	streamui "github.com/haowjy/meridian-streamui-go"
)

func weatherTool() streamui.Tool {
	return streamui.Tool{
		Type: "function",
		Function: streamui.FunctionDetails{
			Name:        "getWeather",
			Description: "Get the weather for a location",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"location": map[string]interface{}{"type": "string"},
				},
				"required":             []string{"location"},
				"additionalProperties": false,
			},
		},
	}
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return string(raw)
}

func TestNewProvider_MissingKey(t *testing.T) {
	_, err := NewProvider("")
	if !errors.Is(err, streamui.ErrInvalidAPIKey) {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
	}
}

func TestProvider_SupportsModel(t *testing.T) {
	provider, err := NewProvider("test-key")
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	tests := []struct {
		model    string
		expected bool
	}{
		{"claude-haiku-4-5-20251001", true},
		{"claude-sonnet-4-5", true},
		{"gpt-4o-mini", false},
		{"lorem-fast", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := provider.SupportsModel(tt.model); got != tt.expected {
				t.Errorf("SupportsModel(%q) = %v, want %v", tt.model, got, tt.expected)
			}
		})
	}
}

func TestConvertToAnthropicMessages_Text(t *testing.T) {
	result, err := convertToAnthropicMessages(streamui.NewUserPrompt("Hello, world!"))
	if err != nil {
		t.Fatalf("convertToAnthropicMessages() error = %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result))
	}
	if result[0].Role != anthropic.MessageParamRoleUser {
		t.Errorf("expected user role, got %s", result[0].Role)
	}
}

func TestConvertToAnthropicMessages_ToolUse(t *testing.T) {
	messages := []streamui.Message{
		{
			Role: streamui.RoleAssistant,
			Blocks: []*streamui.Block{
				streamui.NewToolUseBlock(0, "toolu_123", "getWeather", map[string]interface{}{"location": "Paris"}),
			},
		},
	}

	result, err := convertToAnthropicMessages(messages)
	if err != nil {
		t.Fatalf("convertToAnthropicMessages() error = %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result))
	}
	if !strings.Contains(mustJSON(t, result[0]), `"toolu_123"`) {
		t.Errorf("expected tool_use id in message, got %s", mustJSON(t, result[0]))
	}
}

func TestConvertToAnthropicMessages_Errors(t *testing.T) {
	tests := []struct {
		name     string
		messages []streamui.Message
	}{
		{
			name: "tool_use missing id",
			messages: []streamui.Message{{
				Role:   streamui.RoleAssistant,
				Blocks: []*streamui.Block{streamui.NewToolUseBlock(0, "", "getWeather", nil)},
			}},
		},
		{
			name: "text block without content",
			messages: []streamui.Message{{
				Role:   streamui.RoleUser,
				Blocks: []*streamui.Block{{BlockType: streamui.BlockTypeText}},
			}},
		},
		{
			name: "unsupported role",
			messages: []streamui.Message{{
				Role:   "system",
				Blocks: []*streamui.Block{streamui.NewTextBlock(0, "x")},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := convertToAnthropicMessages(tt.messages); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestMergeConsecutiveSameRoleMessages(t *testing.T) {
	messages := []streamui.Message{
		{Role: streamui.RoleUser, Blocks: []*streamui.Block{streamui.NewTextBlock(0, "a")}},
		{Role: streamui.RoleUser, Blocks: []*streamui.Block{streamui.NewTextBlock(0, "b")}},
		{Role: streamui.RoleAssistant, Blocks: []*streamui.Block{streamui.NewTextBlock(0, "c")}},
		{Role: streamui.RoleUser, Blocks: []*streamui.Block{streamui.NewTextBlock(0, "d")}},
	}

	merged := mergeConsecutiveSameRoleMessages(messages)

	if len(merged) != 3 {
		t.Fatalf("expected 3 merged messages, got %d", len(merged))
	}
	if len(merged[0].Blocks) != 2 || merged[0].Blocks[1].Text() != "b" {
		t.Errorf("expected first message to hold a and b, got %+v", merged[0].Blocks)
	}
	if len(messages[0].Blocks) != 1 {
		t.Error("merge must not modify its input")
	}

	if got := mergeConsecutiveSameRoleMessages(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestConvertCustomTool(t *testing.T) {
	tool := weatherTool()

	param, err := convertCustomTool(&tool)
	if err != nil {
		t.Fatalf("convertCustomTool() error = %v", err)
	}

	got := mustJSON(t, param)
	for _, want := range []string{
		`"name":"getWeather"`,
		`"description":"Get the weather for a location"`,
		`"required":["location"]`,
		`"additionalProperties":false`,
		`"location":{"type":"string"}`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s in %s", want, got)
		}
	}
}

func TestConvertCustomTool_Invalid(t *testing.T) {
	tool := streamui.Tool{Type: "function", Function: streamui.FunctionDetails{Name: "x"}}
	if _, err := convertCustomTool(&tool); err == nil {
		t.Fatal("expected error for tool without parameters")
	}
}

func TestConvertToolChoice(t *testing.T) {
	name := "getWeather"
	no := false

	tests := []struct {
		name     string
		choice   *streamui.ToolChoice
		parallel *bool
		wantNil  bool
		contains []string
	}{
		{
			name:    "unset",
			wantNil: true,
		},
		{
			name:     "auto without parallel",
			choice:   &streamui.ToolChoice{Mode: streamui.ToolChoiceModeAuto},
			parallel: &no,
			contains: []string{`"type":"auto"`, `"disable_parallel_tool_use":true`},
		},
		{
			name:     "parallel setting alone implies auto",
			parallel: &no,
			contains: []string{`"type":"auto"`, `"disable_parallel_tool_use":true`},
		},
		{
			name:     "required maps to any",
			choice:   &streamui.ToolChoice{Mode: streamui.ToolChoiceModeRequired},
			contains: []string{`"type":"any"`},
		},
		{
			name:     "none",
			choice:   &streamui.ToolChoice{Mode: streamui.ToolChoiceModeNone},
			contains: []string{`"type":"none"`},
		},
		{
			name:     "specific tool",
			choice:   &streamui.ToolChoice{Mode: streamui.ToolChoiceModeSpecific, ToolName: &name},
			parallel: &no,
			contains: []string{`"type":"tool"`, `"name":"getWeather"`, `"disable_parallel_tool_use":true`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choice, err := convertToolChoice(tt.choice, tt.parallel)
			if err != nil {
				t.Fatalf("convertToolChoice() error = %v", err)
			}
			if tt.wantNil {
				if choice != nil {
					t.Errorf("expected nil choice, got %+v", choice)
				}
				return
			}
			if choice == nil {
				t.Fatal("expected choice, got nil")
			}

			got := mustJSON(t, choice)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected %s in %s", want, got)
				}
			}
		})
	}
}

func TestConvertToolChoice_InvalidSpecific(t *testing.T) {
	_, err := convertToolChoice(&streamui.ToolChoice{Mode: streamui.ToolChoiceModeSpecific}, nil)
	if err == nil {
		t.Fatal("expected error for specific mode without tool name")
	}
}

func TestBuildMessageParams(t *testing.T) {
	system := "Answer briefly."
	no := false
	req := &streamui.GenerateRequest{
		Model:    "claude-haiku-4-5-20251001",
		Messages: streamui.NewUserPrompt("weather in Paris?"),
		Params: &streamui.RequestParams{
			System:            &system,
			Tools:             []streamui.Tool{weatherTool()},
			ToolChoice:        &streamui.ToolChoice{Mode: streamui.ToolChoiceModeAuto},
			ParallelToolCalls: &no,
		},
	}

	params, err := buildMessageParams(req)
	if err != nil {
		t.Fatalf("buildMessageParams() error = %v", err)
	}

	if params.MaxTokens != 4096 {
		t.Errorf("expected default max tokens 4096, got %d", params.MaxTokens)
	}
	if len(params.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(params.Tools))
	}
	if params.ToolChoice.OfAuto == nil {
		t.Error("expected auto tool choice")
	}
	if len(params.System) != 1 || params.System[0].Text != system {
		t.Errorf("unexpected system prompt: %+v", params.System)
	}
}

func TestBuildMessageParams_NoTools(t *testing.T) {
	no := false
	params, err := buildMessageParams(&streamui.GenerateRequest{
		Model:    "claude-haiku-4-5-20251001",
		Messages: streamui.NewUserPrompt("hi"),
		Params:   &streamui.RequestParams{ParallelToolCalls: &no},
	})
	if err != nil {
		t.Fatalf("buildMessageParams() error = %v", err)
	}

	if len(params.Tools) != 0 {
		t.Errorf("expected no tools, got %d", len(params.Tools))
	}
	if params.ToolChoice.OfAuto != nil {
		t.Error("tool choice must be omitted without tools")
	}
}

func decodeEvent(t *testing.T, raw string) anthropic.MessageStreamEventUnion {
	t.Helper()
	var ev anthropic.MessageStreamEventUnion
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("failed to decode event %s: %v", raw, err)
	}
	return ev
}

func TestBuildMessageParams_Temperature(t *testing.T) {
	tests := []struct {
		name        string
		temperature float64
		wantErr     bool
	}{
		{"zero", 0.0, false},
		{"upper bound", 1.0, false},
		{"above anthropic range", 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temperature := tt.temperature
			_, err := buildMessageParams(&streamui.GenerateRequest{
				Model:    "claude-haiku-4-5-20251001",
				Messages: streamui.NewUserPrompt("hello"),
				Params:   &streamui.RequestParams{Temperature: &temperature},
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildMessageParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !streamui.IsInvalidRequest(err) {
				t.Errorf("expected an invalid request error, got %v", err)
			}
		})
	}
}

func TestBlockAccumulator_TextAndToolUse(t *testing.T) {
	acc := newBlockAccumulator()

	raw := []string{
		`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Checking "}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"now."}}`,
		`{"type":"content_block_stop","index":0}`,
		`{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_1","name":"getWeather","input":{}}}`,
		`{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"locat"}}`,
		`{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"ion\":\"Paris\"}"}}`,
		`{"type":"content_block_stop","index":1}`,
		`{"type":"message_stop"}`,
	}

	var blocks []*streamui.Block
	var toolStarts int
	for _, r := range raw {
		for _, ev := range acc.handle(decodeEvent(t, r)) {
			if ev.Error != nil {
				t.Fatalf("unexpected error: %v", ev.Error)
			}
			if ev.Block != nil {
				blocks = append(blocks, ev.Block)
			}
			if ev.Delta != nil && ev.Delta.DeltaType == streamui.DeltaTypeToolCallStart {
				toolStarts++
			}
		}
	}

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Text() != "Checking now." {
		t.Errorf("text block = %q", blocks[0].Text())
	}
	if toolStarts != 1 {
		t.Errorf("expected 1 tool_call_start delta, got %d", toolStarts)
	}

	name, _ := blocks[1].GetToolName()
	input, _ := blocks[1].GetToolInput()
	if name != "getWeather" || input["location"] != "Paris" {
		t.Errorf("unexpected tool block: name=%s input=%v", name, input)
	}
	if blocks[1].Sequence != 1 {
		t.Errorf("expected sequence 1, got %d", blocks[1].Sequence)
	}
	if blocks[1].Provider == nil || *blocks[1].Provider != "anthropic" {
		t.Error("expected provider to be recorded")
	}
}

func TestBlockAccumulator_InvalidToolJSON(t *testing.T) {
	acc := newBlockAccumulator()

	acc.handle(decodeEvent(t, `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_1","name":"getWeather","input":{}}}`))
	acc.handle(decodeEvent(t, `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"location\":"}}`))
	events := acc.handle(decodeEvent(t, `{"type":"content_block_stop","index":0}`))

	if len(events) != 1 || events[0].Error == nil {
		t.Fatalf("expected an error event, got %+v", events)
	}
}

func TestBlockAccumulator_EmptyToolInput(t *testing.T) {
	acc := newBlockAccumulator()

	acc.handle(decodeEvent(t, `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_1","name":"getWeather","input":{}}}`))
	events := acc.handle(decodeEvent(t, `{"type":"content_block_stop","index":0}`))

	if len(events) != 1 || events[0].Block == nil {
		t.Fatalf("expected a block, got %+v", events)
	}
	input, ok := events[0].Block.GetToolInput()
	if !ok || len(input) != 0 {
		t.Errorf("expected empty input, got %v", input)
	}
}
