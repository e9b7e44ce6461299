package reading

import (
	"context"

	fx "github.com/robotalks/tmon/pkg/framework"
)

// Sink stores readings. Implementations must accept concurrent Insert
// calls; every call is independent of previous ones.
type Sink interface {
	Insert(context.Context, Reading) error
}

// SinkFunc is func form of Sink.
type SinkFunc func(context.Context, Reading) error

// Insert implements Sink.
func (f SinkFunc) Insert(ctx context.Context, r Reading) error {
	return f(ctx, r)
}

// Discard is a Sink dropping everything.
var Discard Sink = SinkFunc(func(context.Context, Reading) error { return nil })

// MultiSink hands each reading to all sinks.
type MultiSink []Sink

// Insert implements Sink. Every sink is tried; failures are aggregated.
func (m MultiSink) Insert(ctx context.Context, r Reading) error {
	var errs fx.AggregatedError
	for _, s := range m {
		errs.Add(s.Insert(ctx, r))
	}
	return errs.Aggregate()
}
