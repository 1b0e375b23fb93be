package host

import (
	"context"
	"sync"
	"time"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
)

type callerKey struct{}

// WithCaller attaches the invoking account to ctx.
func WithCaller(ctx context.Context, caller domain.AccountID) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the account attached by WithCaller.
func CallerFromContext(ctx context.Context) (domain.AccountID, bool) {
	caller, ok := ctx.Value(callerKey{}).(domain.AccountID)
	return caller, ok
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sink receives emitted events stamped with the block timestamp of the
// operation that produced them. Emission is fire-and-forget: sinks report
// their own failures.
type Sink interface {
	Emit(ctx context.Context, at domain.Timestamp, event domain.Event)
}

// Runtime implements usecase.Host on top of a clock and a set of sinks.
type Runtime struct {
	clock Clock
	mu    sync.RWMutex
	sinks []Sink
}

func NewRuntime(clock Clock, sinks ...Sink) *Runtime {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Runtime{
		clock: clock,
		sinks: sinks,
	}
}

// Subscribe adds a sink that is constructed after the runtime, like the bot.
func (r *Runtime) Subscribe(sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, sink)
}

func (r *Runtime) BlockTimestamp() domain.Timestamp {
	return domain.TimestampOf(r.clock.Now())
}

// Caller returns the account attached to ctx, or an empty AccountID.
func (r *Runtime) Caller(ctx context.Context) domain.AccountID {
	caller, _ := CallerFromContext(ctx)
	return caller
}

func (r *Runtime) Emit(ctx context.Context, at domain.Timestamp, event domain.Event) {
	r.mu.RLock()
	sinks := make([]Sink, len(r.sinks))
	copy(sinks, r.sinks)
	r.mu.RUnlock()

	for _, sink := range sinks {
		sink.Emit(ctx, at, event)
	}
}
