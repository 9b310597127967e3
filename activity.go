package security

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventTokenIssued    ActivityEventType = "security.token.issued"
	ActivityEventTokenDenied    ActivityEventType = "security.token.denied"
	ActivityEventProviderFailed ActivityEventType = "security.provider.failed"
)

// ActivityEvent captures audit friendly information about one
// authentication attempt. It never carries credentials or tokens.
type ActivityEvent struct {
	EventType  ActivityEventType
	Provider   string
	RequestID  string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing purposes. Sinks run
// best effort: errors are logged, never returned to the caller.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

// NormalizeActivitySink returns sink, or a no-op sink when nil.
func NormalizeActivitySink(sink ActivitySink) ActivitySink {
	if sink == nil {
		return noopActivitySink{}
	}
	return sink
}
