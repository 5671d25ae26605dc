package streamui

// Block type constants
const (
	BlockTypeText    = "text"
	BlockTypeToolUse = "tool_use"
)

// Block represents one finished content block of a model response.
//
// The Content field stores block-type-specific structured data:
//   - text: empty (text in TextContent field)
//   - tool_use: {"tool_use_id": "call_...", "tool_name": "...", "input": {...}}
type Block struct {
	// BlockType indicates the type of block ("text" or "tool_use")
	BlockType string `json:"block_type"`

	// Sequence indicates the position of this block in the response (0-indexed)
	Sequence int `json:"sequence"`

	// TextContent contains the text for text blocks
	TextContent *string `json:"text_content,omitempty"`

	// Content contains type-specific structured data
	Content map[string]interface{} `json:"content,omitempty"`

	// Provider identifies which provider generated this block
	Provider *string `json:"provider,omitempty"`
}

// NewTextBlock creates a text block at the given sequence.
func NewTextBlock(sequence int, text string) *Block {
	return &Block{
		BlockType:   BlockTypeText,
		Sequence:    sequence,
		TextContent: &text,
	}
}

// NewToolUseBlock creates a tool_use block at the given sequence.
func NewToolUseBlock(sequence int, id, name string, input map[string]interface{}) *Block {
	if input == nil {
		input = map[string]interface{}{}
	}
	return &Block{
		BlockType: BlockTypeToolUse,
		Sequence:  sequence,
		Content: map[string]interface{}{
			"tool_use_id": id,
			"tool_name":   name,
			"input":       input,
		},
	}
}

// Text returns the text content, or "" for non-text blocks.
func (b *Block) Text() string {
	if b.TextContent == nil {
		return ""
	}
	return *b.TextContent
}

// IsToolUseBlock returns true if this is a tool_use block
func (b *Block) IsToolUseBlock() bool {
	return b.BlockType == BlockTypeToolUse
}

// GetToolUseID returns the tool_use_id from a tool_use block
func (b *Block) GetToolUseID() (string, bool) {
	if !b.IsToolUseBlock() {
		return "", false
	}
	id, ok := b.Content["tool_use_id"].(string)
	return id, ok
}

// GetToolName returns the tool_name from a tool_use block
func (b *Block) GetToolName() (string, bool) {
	if !b.IsToolUseBlock() {
		return "", false
	}
	name, ok := b.Content["tool_name"].(string)
	return name, ok
}

// GetToolInput returns the input from a tool_use block
func (b *Block) GetToolInput() (map[string]interface{}, bool) {
	if !b.IsToolUseBlock() {
		return nil, false
	}
	input, ok := b.Content["input"].(map[string]interface{})
	return input, ok
}

// SetProvider records the provider that produced the block.
func (b *Block) SetProvider(id ProviderID) {
	s := id.String()
	b.Provider = &s
}

// Delta type constants for streaming events
const (
	DeltaTypeText          = "text_delta"      // Regular text content
	DeltaTypeToolCallStart = "tool_call_start" // Tool call initiated (name, id)
	DeltaTypeJSON          = "json_delta"      // Incremental tool input JSON
)

// BlockDelta represents an incremental update to a block during streaming.
// Deltas are informational: consumers that need the finished content wait for
// the Block event of the same index.
//
// BlockType is only set on the first delta for a block and signals block start.
type BlockDelta struct {
	// BlockIndex identifies which block this delta belongs to (0-indexed)
	BlockIndex int `json:"block_index"`

	// BlockType is set on the first delta for a block
	BlockType *string `json:"block_type,omitempty"`

	// DeltaType is one of the DeltaType constants
	DeltaType string `json:"delta_type"`

	TextDelta *string `json:"text_delta,omitempty"`
	JSONDelta *string `json:"json_delta,omitempty"`

	// ToolCallID and ToolCallName are set on tool_call_start
	ToolCallID   *string `json:"tool_call_id,omitempty"`
	ToolCallName *string `json:"tool_call_name,omitempty"`
}

// IsTextDelta returns true if this delta contains text content
func (d *BlockDelta) IsTextDelta() bool {
	return d.DeltaType == DeltaTypeText && d.TextDelta != nil
}

// IsJSONDelta returns true if this delta contains JSON content
func (d *BlockDelta) IsJSONDelta() bool {
	return d.DeltaType == DeltaTypeJSON && d.JSONDelta != nil
}

// IsBlockStart returns true if this delta signals the start of a new block
func (d *BlockDelta) IsBlockStart() bool {
	return d.BlockType != nil
}
