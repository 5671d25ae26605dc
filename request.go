package streamui

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GenerateRequest contains the parameters for one model inference request.
type GenerateRequest struct {
	// Messages contains the conversation history.
	Messages []Message

	// Model is the model identifier (e.g., "gpt-4o-mini")
	Model string

	// Params contains request parameters; provider adapters extract what they support.
	Params *RequestParams
}

// Message represents a single message in the conversation.
type Message struct {
	// Role is either "user" or "assistant"
	Role string

	Blocks []*Block
}

// NewUserPrompt builds the single-message conversation for a free-text prompt.
// An empty prompt is kept as an empty text block.
func NewUserPrompt(prompt string) []Message {
	return []Message{
		{
			Role:   RoleUser,
			Blocks: []*Block{NewTextBlock(0, prompt)},
		},
	}
}

// LastUserText returns the text of the last user message, or "".
func LastUserText(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != RoleUser {
			continue
		}
		var text string
		for _, block := range messages[i].Blocks {
			if block.BlockType == BlockTypeText {
				text += block.Text()
			}
		}
		return text
	}
	return ""
}
