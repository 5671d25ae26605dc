package streamui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// GenerateFunc runs a tool the model selected. Interim fragments are passed to
// yield in order; yield returns false once the consumer has gone away. The
// returned fragment is the tool's final UI.
type GenerateFunc func(ctx context.Context, args map[string]interface{}, yield func(Fragment) bool) (Fragment, error)

// UITool pairs a declared capability with the function that renders its UI.
type UITool struct {
	Tool     *Tool
	Generate GenerateFunc
}

type registeredTool struct {
	ui     UITool
	schema *jsonschema.Resolved
}

// ToolSet holds the UI tools declared for one request.
// Tools keep their registration order when declared to the model.
type ToolSet struct {
	tools map[string]*registeredTool
	order []string
	mu    sync.RWMutex
}

// NewToolSet builds a ToolSet from the given tools.
func NewToolSet(tools ...UITool) (*ToolSet, error) {
	s := &ToolSet{
		tools: make(map[string]*registeredTool),
	}
	for _, t := range tools {
		if err := s.Register(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds a tool. The parameter schema is resolved once here so that
// argument validation per call is cheap.
func (s *ToolSet) Register(t UITool) error {
	if t.Tool == nil {
		return errors.New("tool definition is required")
	}
	if err := t.Tool.Validate(); err != nil {
		return fmt.Errorf("tool %s: %w", t.Tool.Function.Name, err)
	}
	if t.Generate == nil {
		return fmt.Errorf("generate function is required for tool %s", t.Tool.Function.Name)
	}

	resolved, err := resolveSchema(t.Tool.Function.Parameters)
	if err != nil {
		return fmt.Errorf("tool %s: %w", t.Tool.Function.Name, err)
	}

	name := t.Tool.Function.Name

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tools[name]; exists {
		return fmt.Errorf("tool %s is already registered", name)
	}

	s.tools[name] = &registeredTool{ui: t, schema: resolved}
	s.order = append(s.order, name)
	return nil
}

// Get retrieves a tool by name
func (s *ToolSet) Get(name string) (UITool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rt, ok := s.tools[name]
	if !ok {
		return UITool{}, false
	}
	return rt.ui, true
}

// Names returns the registered tool names in registration order.
func (s *ToolSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.order...)
}

// Declarations returns the tool schemas to send to the model.
func (s *ToolSet) Declarations() []Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Tool, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.tools[name].ui.Tool)
	}
	return out
}

// ValidateArgs checks model-supplied arguments against the tool's schema.
func (s *ToolSet) ValidateArgs(name string, args map[string]interface{}) error {
	s.mu.RLock()
	rt, ok := s.tools[name]
	s.mu.RUnlock()

	if !ok {
		return &ValidationError{
			Field:  "tool_name",
			Value:  name,
			Reason: "model called an undeclared tool",
			Err:    ErrInvalidRequest,
		}
	}

	if err := rt.schema.Validate(args); err != nil {
		return &ValidationError{
			Field:  name,
			Value:  args,
			Reason: err.Error(),
			Err:    ErrInvalidRequest,
		}
	}
	return nil
}

// resolveSchema converts a map-form JSON schema into a resolved jsonschema.
func resolveSchema(params map[string]interface{}) (*jsonschema.Resolved, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal parameters schema: %w", err)
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("parse parameters schema: %w", err)
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve parameters schema: %w", err)
	}
	return resolved, nil
}
