package bus

import (
	"reflect"
	"runtime/debug"

	"go.uber.org/zap"
)

// Handler receives events of one concrete type. A returned error or a panic
// counts as a handler fault.
type Handler[T Event] func(ev T) error

// Mode selects how a subscription is delivered.
type Mode int

const (
	// Sync handlers run on the publisher's goroutine before Publish returns.
	Sync Mode = iota
	// Detached handlers run on the scheduler; the publisher never waits.
	Detached
)

func (m Mode) String() string {
	switch m {
	case Sync:
		return "sync"
	case Detached:
		return "detached"
	default:
		return "unknown"
	}
}

// SubscriptionOption configures a Subscription.
type SubscriptionOption func(*subscriptionOptions)

type subscriptionOptions struct {
	name string
	mode Mode
}

// Async makes the subscription detached.
func Async() SubscriptionOption {
	return func(o *subscriptionOptions) {
		o.mode = Detached
	}
}

// WithName sets the identity used for timing and error attribution. Use it
// for closures, which have no owning type.
func WithName(name string) SubscriptionOption {
	return func(o *subscriptionOptions) {
		o.name = name
	}
}

// Subscription binds one handler to one event type. It is immutable once
// created.
type Subscription struct {
	eventType reflect.Type
	iface     bool
	origin    string
	timerKey  string
	mode      Mode
	call      func(Event) error
	caps      Capabilities
}

// NewSubscription binds h to the event type T. It panics when h or one of
// the timer and reporter capabilities is nil.
func NewSubscription[T Event](h Handler[T], caps Capabilities, opts ...SubscriptionOption) *Subscription {
	if h == nil {
		panic("bus: nil handler")
	}
	if caps.Timer == nil || caps.Reporter == nil {
		panic("bus: subscription requires a timer and an error reporter")
	}
	if caps.Scheduler == nil {
		caps.Scheduler = goScheduler{}
	}
	if caps.Logger == nil {
		caps.Logger = zap.NewNop()
	}

	var o subscriptionOptions
	for _, opt := range opts {
		opt(&o)
	}

	t := reflect.TypeFor[T]()
	s := &Subscription{
		eventType: t,
		iface:     t.Kind() == reflect.Interface,
		mode:      o.mode,
		caps:      caps,
		call: func(ev Event) error {
			return h(ev.(T))
		},
	}

	switch owner := ownerName(h); {
	case o.name != "":
		s.origin = o.name
		s.timerKey = "Events." + o.name
	case owner != "":
		s.origin = owner
		s.timerKey = "Events." + owner
	default:
		s.origin = typeName(t)
		s.timerKey = "Events." + lambdaKey
	}
	return s
}

// Origin is the display identity used when reporting this subscription's faults.
func (s *Subscription) Origin() string { return s.origin }

// Mode reports whether the subscription is sync or detached.
func (s *Subscription) Mode() Mode { return s.mode }

// EventType is the type the subscription is bound to.
func (s *Subscription) EventType() reflect.Type { return s.eventType }

// Matches reports whether ev's dynamic type is the bound type. When the
// bound type is an interface, any event implementing it matches.
func (s *Subscription) Matches(ev Event) bool {
	if ev == nil {
		return false
	}
	t := reflect.TypeOf(ev)
	if s.iface {
		return t.Implements(s.eventType)
	}
	return t == s.eventType
}

// Deliver invokes the handler if ev matches. Sync faults are returned to the
// caller. Detached invocations are handed to the scheduler and their faults
// go to the error reporter; Deliver returns nil for them immediately.
func (s *Subscription) Deliver(ev Event) error {
	if !s.Matches(ev) {
		return nil
	}
	if s.mode == Sync {
		return s.invoke(ev)
	}
	s.caps.Scheduler.Go(func() {
		if err := s.invoke(ev); err != nil {
			report(s.caps.Reporter, s.caps.Logger, s.origin, ev, err)
		}
	})
	return nil
}

func (s *Subscription) invoke(ev Event) (err error) {
	defer s.caps.Timer.TimeScope(s.timerKey).Stop()
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return s.call(ev)
}
