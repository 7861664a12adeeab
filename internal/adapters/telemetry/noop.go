package telemetry

import (
	"context"

	"go.memora.dev/memora/internal/core/ports"
)

// NoopTracer implements ports.Tracer with spans that do nothing, for tests
// and environments with no configured exporter.
type NoopTracer struct{}

var _ ports.Tracer = NoopTracer{}

// Start returns ctx unchanged and a Span whose methods are no-ops.
func (NoopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) SetAttribute(string, string) {}
func (noopSpan) RecordError(error)           {}
func (noopSpan) End()                        {}
