// Package actions contains the server actions invoked by the page.
package actions

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	streamui "github.com/haowjy/meridian-streamui-go"
	"github.com/haowjy/meridian-streamui-go/components"
	"github.com/haowjy/meridian-streamui-go/logging"
	"github.com/haowjy/meridian-streamui-go/telemetry"
	"github.com/haowjy/meridian-streamui-go/weather"
)

const tracerName = "github.com/haowjy/meridian-streamui-go/actions"

// Action streams a UI component answering a prompt.
type Action struct {
	Provider streamui.Provider
	Model    string
	System   *string
	Logger   *slog.Logger

	tracer trace.Tracer
}

// Option configures an Action.
type Option func(*Action)

// WithSystem sets the system prompt sent with every request.
func WithSystem(system string) Option {
	return func(a *Action) {
		if system != "" {
			a.System = &system
		}
	}
}

// WithLogger overrides the action logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Action) {
		if l != nil {
			a.Logger = l
		}
	}
}

// WithTracer overrides the tracer used for action spans.
func WithTracer(t trace.Tracer) Option {
	return func(a *Action) {
		if t != nil {
			a.tracer = t
		}
	}
}

// New creates an Action. An empty model selects the provider's default.
func New(provider streamui.Provider, model string, opts ...Option) (*Action, error) {
	if provider == nil {
		return nil, errors.New("actions: provider is required")
	}
	if model == "" {
		model = provider.Name().DefaultModel()
	}

	a := &Action{
		Provider: provider,
		Model:    model,
		Logger:   logging.WithComponent("actions"),
		tracer:   telemetry.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}

	for _, w := range streamui.GetCapabilityRegistry().CheckModel(provider.Name().String(), model) {
		a.Logger.Warn("model check", "provider", w.Provider, "model", w.Model, "warning", w.Message)
	}
	return a, nil
}

// StreamComponent sends prompt to the model with the getWeather tool
// declared. Weather prompts stream the loading placeholder and then the
// weather component; anything else streams the model's text.
func (a *Action) StreamComponent(ctx context.Context, prompt string) (<-chan streamui.Update, error) {
	ctx, span := a.tracer.Start(ctx, "actions.StreamComponent", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("provider", a.Provider.Name().String()),
		attribute.String("model", a.Model),
	))

	tool, err := weather.NewTool()
	if err != nil {
		telemetry.End(span, err)
		return nil, err
	}

	updates, err := streamui.StreamUI(ctx, streamui.Options{
		Provider: a.Provider,
		Model:    a.Model,
		Prompt:   prompt,
		System:   a.System,
		Text:     components.Text,
		Tools:    []streamui.UITool{tool},
		Logger:   a.Logger,
	})
	if err != nil {
		a.Logger.Error("stream component failed", "error", err)
		telemetry.End(span, err)
		return nil, err
	}

	out := make(chan streamui.Update)
	go func() {
		defer close(out)

		var streamErr error
		for u := range updates {
			if u.Final {
				streamErr = u.Err
				span.SetAttributes(attribute.String("fragment.kind", string(u.Fragment.Kind)))
			}
			select {
			case out <- u:
			case <-ctx.Done():
				// StreamUI stops on the same ctx and closes updates
				for range updates {
				}
				telemetry.End(span, ctx.Err())
				return
			}
		}
		if streamErr != nil {
			a.Logger.Warn("stream component ended with error", "error", streamErr)
		}
		telemetry.End(span, streamErr)
	}()

	return out, nil
}
