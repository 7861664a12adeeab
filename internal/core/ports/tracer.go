package ports

import "context"

// Span is an in-flight unit of tracing work started by Tracer.Start. Callers
// must call End exactly once, typically via defer.
type Span interface {
	// SetAttribute attaches a key/value pair to the span.
	SetAttribute(key string, value string)
	// RecordError records err on the span, if non-nil.
	RecordError(err error)
	// End closes the span.
	End()
}

// Tracer creates spans for observability. internal/app.App wraps each
// Lookup/Get/Insert call in one span; Resolver steps and Cache Store
// operations get no spans of their own. It is an ambient concern: Memora's Non-goals exclude
// metrics and a daemon, not tracing of the operations it does perform.
//
//go:generate mockgen -source=tracer.go -destination=mocks/mock_tracer.go -package=mocks
type Tracer interface {
	// Start begins a span named name and returns the derived context and
	// the Span handle.
	Start(ctx context.Context, name string) (context.Context, Span)
}
