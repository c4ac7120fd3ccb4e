package bootstrap

import (
	"context"
	"fmt"

	"github.com/matheus3301/eventsagg/internal/bus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const subscriberGroup = `group:"event_subscribers"`

// Module provides the bus, its capabilities and the detached task tracker,
// then registers every subscriber. It requires a *zap.Logger in the graph.
// Stopping the app waits for in-flight detached handlers.
func Module(opts Options) fx.Option {
	provides := []fx.Option{
		fx.Provide(bus.NewTasks),
		fx.Supply(subscriberList(opts.Subscribers)),
	}
	for _, r := range Candidates(opts) {
		provides = append(provides, r.Option())
	}
	return fx.Module("events",
		fx.Options(provides...),
		fx.Invoke(initialize),
	)
}

// AsSubscriber provides constructor's result as a bus.Subscriber picked up
// by Module.
func AsSubscriber(constructor any) fx.Option {
	return fx.Provide(fx.Annotate(constructor,
		fx.As(new(bus.Subscriber)),
		fx.ResultTags(subscriberGroup),
	))
}

// Initialize calls SubscribeForEvents on each subscriber once, in order.
func Initialize(a bus.Aggregator, subscribers []bus.Subscriber) {
	for _, s := range subscribers {
		s.SubscribeForEvents(a)
	}
}

type subscriberList []bus.Subscriber

type initParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Aggregator bus.Aggregator
	Tasks      *bus.Tasks
	Logger     *zap.Logger
	Listed     subscriberList
	Grouped    []bus.Subscriber `group:"event_subscribers"`
}

func initialize(p initParams) {
	subscribers := make([]bus.Subscriber, 0, len(p.Listed)+len(p.Grouped))
	subscribers = append(subscribers, p.Listed...)
	subscribers = append(subscribers, p.Grouped...)
	Initialize(p.Aggregator, subscribers)
	p.Logger.Info("event subscribers registered", zap.Int("subscribers", len(subscribers)))

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := p.Tasks.Wait(ctx); err != nil {
				return fmt.Errorf("drain detached handlers: %w", err)
			}
			return nil
		},
	})
}
