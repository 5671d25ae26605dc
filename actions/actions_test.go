package actions

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	streamui "github.com/haowjy/meridian-streamui-go"
	"github.com/haowjy/meridian-streamui-go/components"
	"github.com/haowjy/meridian-streamui-go/providers/lorem"
	"github.com/haowjy/meridian-streamui-go/weather"
)

func collect(t *testing.T, ch <-chan streamui.Update) []streamui.Update {
	t.Helper()

	var updates []streamui.Update
	timeout := time.After(10 * time.Second)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return updates
			}
			updates = append(updates, u)
		case <-timeout:
			t.Fatal("timed out waiting for updates")
		}
	}
}

func newRecordedAction(t *testing.T) (*Action, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	a, err := New(lorem.NewProvider(), "lorem-instant", WithTracer(tp.Tracer("test")))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a, recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNew(t *testing.T) {
	a, err := New(lorem.NewProvider(), "", WithSystem("be brief"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.Model != "lorem-fast" {
		t.Errorf("Model = %s, want provider default lorem-fast", a.Model)
	}
	if a.System == nil || *a.System != "be brief" {
		t.Errorf("System = %v, want be brief", a.System)
	}

	if _, err := New(nil, "lorem-fast"); err == nil {
		t.Error("expected error for nil provider")
	}
}

func TestStreamComponent_Weather(t *testing.T) {
	a, recorder := newRecordedAction(t)

	start := time.Now()
	ch, err := a.StreamComponent(context.Background(), "What's the weather in Paris?")
	if err != nil {
		t.Fatalf("StreamComponent failed: %v", err)
	}
	updates := collect(t, ch)

	if len(updates) != 2 {
		t.Fatalf("expected placeholder and final update, got %+v", updates)
	}
	if updates[0].Final || updates[0].Fragment != components.Loading() {
		t.Errorf("first update = %+v, want non-final loading fragment", updates[0])
	}
	if !updates[1].Final || updates[1].Fragment != components.Weather("Paris", weather.Reading) {
		t.Errorf("final update = %+v, want weather for Paris", updates[1])
	}
	if elapsed := time.Since(start); elapsed < weather.LookupDelay {
		t.Errorf("weather arrived after %v, want at least %v", elapsed, weather.LookupDelay)
	}

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != "actions.StreamComponent" {
		t.Fatalf("expected one actions.StreamComponent span, got %d", len(spans))
	}
	if kind, ok := spanAttr(spans[0], "fragment.kind"); !ok || kind.AsString() != "weather" {
		t.Errorf("fragment.kind = %v, want weather", kind)
	}
	if length, ok := spanAttr(spans[0], "prompt.length"); !ok || length.AsInt64() != int64(len("What's the weather in Paris?")) {
		t.Errorf("prompt.length = %v", length)
	}
}

func TestStreamComponent_Text(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
	}{
		{"joke", "Tell me a joke"},
		{"empty prompt", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, recorder := newRecordedAction(t)

			ch, err := a.StreamComponent(context.Background(), tt.prompt)
			if err != nil {
				t.Fatalf("StreamComponent failed: %v", err)
			}
			updates := collect(t, ch)

			if len(updates) != 1 || !updates[0].Final {
				t.Fatalf("expected a single final update, got %+v", updates)
			}
			f := updates[0].Fragment
			if f.Kind != streamui.FragmentText || f.Text == "" {
				t.Errorf("unexpected fragment %+v", f)
			}
			if f != components.Text(f.Text) {
				t.Errorf("fragment was not rendered by components.Text: %+v", f)
			}
			if strings.Contains(f.HTML, "Getting weather") {
				t.Error("text answer should not include the placeholder")
			}

			spans := recorder.Ended()
			if len(spans) != 1 {
				t.Fatalf("expected 1 span, got %d", len(spans))
			}
			if kind, _ := spanAttr(spans[0], "fragment.kind"); kind.AsString() != "text" {
				t.Errorf("fragment.kind = %v, want text", kind)
			}
		})
	}
}

func TestStreamComponent_UnsupportedModel(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	a, err := New(lorem.NewProvider(), "gpt-4o-mini", WithTracer(tp.Tracer("test")))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := a.StreamComponent(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for unsupported model")
	}
	if spans := recorder.Ended(); len(spans) != 1 || len(spans[0].Events()) == 0 {
		t.Errorf("expected the span to record the error")
	}
}

func TestStreamComponent_Cancel(t *testing.T) {
	a, _ := newRecordedAction(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := a.StreamComponent(ctx, "weather in Oslo")
	if err != nil {
		t.Fatalf("StreamComponent failed: %v", err)
	}

	first := <-ch
	if first.Fragment.Kind != streamui.FragmentLoading {
		t.Fatalf("expected loading first, got %+v", first)
	}

	start := time.Now()
	cancel()
	for u := range ch {
		if u.Final && u.Err == nil {
			t.Errorf("unexpected final fragment after cancel: %+v", u)
		}
	}
	if elapsed := time.Since(start); elapsed >= weather.LookupDelay {
		t.Errorf("stream kept running after cancel: %v", elapsed)
	}
}
