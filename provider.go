package streamui

import (
	"context"
)

// Provider defines the interface that all hosted-model adapters implement.
//
// StreamResponse is non-blocking: it validates the request, starts the call
// and returns a channel that emits StreamEvent as they arrive. The channel is
// closed when streaming completes or encounters an error.
//
// Usage:
//
//	eventChan, err := provider.StreamResponse(ctx, req)
//	if err != nil { return err }
//	for event := range eventChan {
//	  if event.Error != nil { handle error }
//	  if event.Block != nil { block finished }
//	  if event.Metadata != nil { streaming complete }
//	}
type Provider interface {
	StreamResponse(ctx context.Context, req *GenerateRequest) (<-chan StreamEvent, error)

	// Name returns the provider identifier
	Name() ProviderID

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}
