package streamui

// StreamEvent represents a single event in a streaming response.
// Each event contains either a delta, a complete block, metadata (completion), or an error.
//
// Providers emit one Block event per finished content block, then a single
// Metadata event, then close the channel. A failure is reported as a final
// Error event.
type StreamEvent struct {
	// Delta contains incremental block content (nil if block/metadata/error)
	Delta *BlockDelta

	// Block contains a complete block when a block finishes streaming
	Block *Block

	// Metadata contains final response data when streaming completes
	Metadata *StreamMetadata

	// Error contains any error that occurred during streaming
	Error error
}

// StreamMetadata contains completion information sent when streaming finishes.
type StreamMetadata struct {
	// Model is the model that was used (may differ from request if aliased)
	Model string

	InputTokens  int
	OutputTokens int

	// StopReason indicates why generation stopped (e.g., "end_turn", "max_tokens", "tool_use")
	StopReason string

	// ResponseMetadata contains provider-specific response data
	ResponseMetadata map[string]interface{}
}
