package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.memora.dev/memora/internal/core/ports"
)

// NodeID is the unique identifier for the tracer Graft node.
const NodeID graft.ID = "adapter.tracer"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Tracer, error) {
			Setup()
			return NewOTelTracer("memora"), nil
		},
	})
}

// Setup installs a bare OpenTelemetry SDK TracerProvider as the global
// provider, with no span processor and no exporter: spans are created and
// sampled but never exported.
func Setup() {
	otel.SetTracerProvider(sdktrace.NewTracerProvider())
}
