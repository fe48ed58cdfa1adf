package engine

import (
	"context"

	"github.com/ppiankov/claimify/internal/model"
)

// Dispatcher sends a claim query to the fact-check collaborator. Send returns
// once the request is accepted; the verdict arrives later through the
// engine's result entry points, routed by meta.ClaimKey.
type Dispatcher interface {
	Send(ctx context.Context, claimID, query string, meta model.DispatchMeta) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, claimID, query string, meta model.DispatchMeta) error

// Send calls f.
func (f DispatcherFunc) Send(ctx context.Context, claimID, query string, meta model.DispatchMeta) error {
	return f(ctx, claimID, query, meta)
}

// ResultHandler receives complete fact-check results keyed by claim key.
type ResultHandler interface {
	HandleResult(claimKey string, res model.FactCheckResult)
}

// EventSink receives lifecycle transitions. Emit must not block.
type EventSink interface {
	Emit(ev model.ClaimEvent)
}

type nopSink struct{}

func (nopSink) Emit(model.ClaimEvent) {}
