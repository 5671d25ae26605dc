package streamui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/haowjy/meridian-streamui-go/logging"
)

// TextRenderer renders the model's free-text answer. It receives the text
// exactly as generated.
type TextRenderer func(content string) Fragment

// Options configures one StreamUI call.
type Options struct {
	Provider Provider
	Model    string

	// Prompt is sent as the single user message. It may be empty.
	Prompt string

	// System prompt (optional)
	System *string

	// Text renders the answer when the model does not call a tool
	Text TextRenderer

	// Tools are declared to the model in order
	Tools []UITool

	// Params carries optional sampling parameters; Tools, ToolChoice and
	// ParallelToolCalls are filled in from the UI tools when unset.
	Params *RequestParams

	Logger *slog.Logger
}

// StreamUI sends the prompt to the model with every UI tool declared and
// returns a stream of UI updates.
//
// If the model calls a tool, the tool's fragments are delivered in the order
// it yields them, followed by its final fragment. Otherwise one final text
// fragment is delivered once the model is done. Every stream ends with
// exactly one Final update and the channel is then closed.
//
// Request problems (unsupported model, invalid tools or params, provider setup
// failures) are returned directly; failures after the call started arrive as
// a Final update with Err set.
func StreamUI(ctx context.Context, opts Options) (<-chan Update, error) {
	if opts.Provider == nil {
		return nil, errors.New("streamui: provider is required")
	}
	if opts.Text == nil {
		return nil, errors.New("streamui: text renderer is required")
	}
	if !opts.Provider.SupportsModel(opts.Model) {
		return nil, &ModelError{
			Model:    opts.Model,
			Provider: opts.Provider.Name().String(),
			Reason:   "model not supported by provider",
			Err:      ErrInvalidModel,
		}
	}

	tools, err := NewToolSet(opts.Tools...)
	if err != nil {
		return nil, err
	}

	params := buildParams(opts, tools)
	if err := ValidateRequestParams(params); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.WithComponent("streamui")
	}

	ctx, cancel := context.WithCancel(ctx)
	events, err := opts.Provider.StreamResponse(ctx, &GenerateRequest{
		Messages: NewUserPrompt(opts.Prompt),
		Model:    opts.Model,
		Params:   params,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan Update, 4)
	r := &uiRun{
		tools:  tools,
		text:   opts.Text,
		logger: logger.With("provider", opts.Provider.Name().String(), "model", opts.Model),
		out:    out,
	}
	go r.run(ctx, cancel, events)

	return out, nil
}

func buildParams(opts Options, tools *ToolSet) *RequestParams {
	params := &RequestParams{}
	if opts.Params != nil {
		*params = *opts.Params
	}
	if opts.System != nil {
		params.System = opts.System
	}

	declared := tools.Declarations()
	if len(declared) == 0 {
		return params
	}
	if len(params.Tools) == 0 {
		params.Tools = declared
	}
	if params.ToolChoice == nil {
		params.ToolChoice = &ToolChoice{Mode: ToolChoiceModeAuto}
	}
	if params.ParallelToolCalls == nil {
		parallel := false
		params.ParallelToolCalls = &parallel
	}
	return params
}

// uiRun consumes one provider stream and turns it into UI updates.
type uiRun struct {
	tools  *ToolSet
	text   TextRenderer
	logger *slog.Logger
	out    chan<- Update

	content strings.Builder
	toolRan bool
}

func (r *uiRun) run(ctx context.Context, cancel context.CancelFunc, events <-chan StreamEvent) {
	defer close(r.out)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			drain(events)
			return

		case ev, ok := <-events:
			if !ok {
				r.finish(ctx)
				return
			}

			switch {
			case ev.Error != nil:
				if r.toolRan {
					r.logger.Warn("provider error after tool completed", "error", ev.Error)
					continue
				}
				r.send(ctx, Update{Err: ev.Error, Final: true})
				cancel()
				drain(events)
				return

			case ev.Block != nil:
				if !r.handleBlock(ctx, ev.Block) {
					cancel()
					drain(events)
					return
				}

			case ev.Metadata != nil:
				r.logger.Debug("model response complete",
					"stop_reason", ev.Metadata.StopReason,
					"input_tokens", ev.Metadata.InputTokens,
					"output_tokens", ev.Metadata.OutputTokens)
			}
		}
	}
}

// handleBlock returns false when the stream must stop.
func (r *uiRun) handleBlock(ctx context.Context, block *Block) bool {
	switch block.BlockType {
	case BlockTypeText:
		if !r.toolRan {
			r.content.WriteString(block.Text())
		}
		return true

	case BlockTypeToolUse:
		name, _ := block.GetToolName()
		if r.toolRan {
			r.logger.Warn("ignoring additional tool call", "tool", name)
			return true
		}
		r.toolRan = true
		return r.runTool(ctx, name, block)

	default:
		return true
	}
}

func (r *uiRun) runTool(ctx context.Context, name string, block *Block) bool {
	args, _ := block.GetToolInput()
	if err := r.tools.ValidateArgs(name, args); err != nil {
		r.send(ctx, Update{Err: err, Final: true})
		return false
	}

	tool, _ := r.tools.Get(name)
	r.logger.Debug("running tool", "tool", name)

	yield := func(f Fragment) bool {
		return r.send(ctx, Update{Fragment: f})
	}

	final, err := tool.Generate(ctx, args, yield)
	if err != nil {
		if ctx.Err() == nil {
			r.send(ctx, Update{Err: err, Final: true})
		}
		return false
	}

	return r.send(ctx, Update{Fragment: final, Final: true})
}

// finish delivers the text answer when no tool was selected.
func (r *uiRun) finish(ctx context.Context) {
	if r.toolRan {
		return
	}
	r.send(ctx, Update{Fragment: r.text(r.content.String()), Final: true})
}

func (r *uiRun) send(ctx context.Context, u Update) bool {
	select {
	case r.out <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

// drain empties a provider channel in the background so its goroutine can exit.
func drain(events <-chan StreamEvent) {
	go func() {
		for range events {
		}
	}()
}
