package bus

import (
	"sync"

	"go.uber.org/zap"
)

// Aggregator is the registration and publish surface handed to subscribers.
type Aggregator interface {
	Publish(ev Event)
	Add(s *Subscription)
	Capabilities() Capabilities
}

// Bus is an in-process publish/subscribe event bus with type-based routing.
// Subscriptions are append-only and are delivered in insertion order.
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	caps   Capabilities
	logger *zap.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for registry diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithScheduler sets where detached handlers run. Defaults to a new Tasks.
func WithScheduler(s Scheduler) Option {
	return func(b *Bus) {
		if s != nil {
			b.caps.Scheduler = s
		}
	}
}

// New creates an event bus. It panics when timer or reporter is nil; use
// NopTimer and NopReporter when no backend is wanted.
func New(timer Timer, reporter ErrorReporter, opts ...Option) *Bus {
	if timer == nil || reporter == nil {
		panic("bus: New requires a timer and an error reporter")
	}
	b := &Bus{
		caps: Capabilities{
			Timer:     timer,
			Reporter:  reporter,
			Scheduler: NewTasks(),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Capabilities returns the collaborators new subscriptions are built with.
func (b *Bus) Capabilities() Capabilities {
	caps := b.caps
	caps.Logger = b.logger
	return caps
}

// Add appends s to the registry.
func (b *Bus) Add(s *Subscription) {
	if s == nil {
		panic("bus: nil subscription")
	}
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()

	b.logger.Debug("subscription added",
		zap.String("origin", s.Origin()),
		zap.Stringer("mode", s.Mode()),
		zap.String("event", typeName(s.EventType())),
	)
}

// Len returns the number of registered subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers ev to every subscription bound to its type. Sync handlers
// run in subscription order on the caller's goroutine; a failing handler is
// reported and does not stop delivery to the rest. Publishing nil does nothing.
func (b *Bus) Publish(ev Event) {
	if ev == nil {
		return
	}
	defer b.caps.Timer.TimeScope(publishKey(ev)).Stop()

	for _, s := range b.matching(ev) {
		if err := s.Deliver(ev); err != nil {
			b.report(s.Origin(), ev, err)
		}
	}
}

// matching snapshots the subscriptions for ev. The lock is released before
// any handler runs, so handlers may publish or subscribe.
func (b *Bus) matching(ev Event) []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*Subscription
	for _, s := range b.subs {
		if s.Matches(ev) {
			out = append(out, s)
		}
	}
	return out
}

// report forwards a sync handler fault to the error reporter.
func (b *Bus) report(origin string, ev Event, err error) {
	report(b.caps.Reporter, b.logger, origin, ev, err)
}

func publishKey(ev Event) string {
	return "Events." + EventName(ev) + "._Sync"
}

// Subscribe registers a sync handler for events of type T.
func Subscribe[T Event](a Aggregator, h Handler[T], opts ...SubscriptionOption) {
	a.Add(NewSubscription(h, a.Capabilities(), opts...))
}

// SubscribeAsync registers a detached handler for events of type T.
func SubscribeAsync[T Event](a Aggregator, h Handler[T], opts ...SubscriptionOption) {
	opts = append([]SubscriptionOption{Async()}, opts...)
	a.Add(NewSubscription(h, a.Capabilities(), opts...))
}
