// Package bootstrap assembles the event bus and its capabilities for an fx
// application and runs subscriber registration at startup.
package bootstrap

import (
	"fmt"
	"reflect"

	"github.com/matheus3301/eventsagg/internal/bus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Registration binds a capability interface to its concrete implementation.
type Registration struct {
	Interface   reflect.Type
	Implementor reflect.Type

	provide fx.Option
}

// Option returns the fx provide option for the binding.
func (r Registration) Option() fx.Option {
	return r.provide
}

func (r Registration) String() string {
	return fmt.Sprintf("%s -> %s", r.Interface, r.Implementor)
}

// Options selects capability implementations. Reporter and Timer are fx
// constructors whose first result implements bus.ErrorReporter and bus.Timer;
// nil selects the no-op implementation.
type Options struct {
	Reporter any
	Timer    any

	// Subscribers are registered in order, before any provided through
	// AsSubscriber.
	Subscribers []bus.Subscriber
}

// Candidates returns the interface bindings for the bus and its capabilities.
// It panics if a constructor in opts is not a function.
func Candidates(opts Options) []Registration {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = func() bus.NopReporter { return bus.NopReporter{} }
	}
	timer := opts.Timer
	if timer == nil {
		timer = func() bus.NopTimer { return bus.NopTimer{} }
	}
	return []Registration{
		bind[bus.ErrorReporter](reporter),
		bind[bus.Aggregator](newBus),
		bind[bus.Timer](timer),
	}
}

func bind[I any](constructor any) Registration {
	t := reflect.TypeOf(constructor)
	if t == nil || t.Kind() != reflect.Func || t.NumOut() == 0 {
		panic(fmt.Sprintf("bootstrap: %T is not a constructor", constructor))
	}
	return Registration{
		Interface:   reflect.TypeFor[I](),
		Implementor: t.Out(0),
		provide:     fx.Provide(fx.Annotate(constructor, fx.As(fx.Self()), fx.As(new(I)))),
	}
}

func newBus(timer bus.Timer, reporter bus.ErrorReporter, tasks *bus.Tasks, logger *zap.Logger) *bus.Bus {
	return bus.New(timer, reporter,
		bus.WithScheduler(tasks),
		bus.WithLogger(logger.Named("bus")),
	)
}
