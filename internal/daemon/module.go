package daemon

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/eventsagg/internal/bootstrap"
	"github.com/matheus3301/eventsagg/internal/bus"
	"github.com/matheus3301/eventsagg/internal/config"
	"github.com/matheus3301/eventsagg/internal/logging"
	"github.com/matheus3301/eventsagg/internal/metrics"
	"github.com/matheus3301/eventsagg/internal/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(cfg *config.Config) fx.Option {
	return fx.Module("daemon",
		fx.Supply(cfg),
		fx.Provide(
			provideLogger,
			provideRegistry,
			provideInstanceID,
			provideStateMachine,
			NewServer,
		),
		bootstrap.Module(busOptions(cfg)),
		bootstrap.AsSubscriber(NewAuditLog),
		fx.Invoke(registerLifecycle),
	)
}

// busOptions picks the reporter and timer implementations for cfg.
func busOptions(cfg *config.Config) bootstrap.Options {
	var opts bootstrap.Options
	ns := cfg.Metrics.Namespace

	switch {
	case cfg.Metrics.Enabled && cfg.Reporter.Kind == config.ReporterZap:
		opts.Reporter = func(reg *prometheus.Registry, logger *zap.Logger) (*metrics.CountingReporter, error) {
			return metrics.NewCountingReporter(reg, ns, logging.NewReporter(logger))
		}
	case cfg.Metrics.Enabled:
		opts.Reporter = func(reg *prometheus.Registry) (*metrics.CountingReporter, error) {
			return metrics.NewCountingReporter(reg, ns, bus.NopReporter{})
		}
	case cfg.Reporter.Kind == config.ReporterZap:
		opts.Reporter = logging.NewReporter
	}

	if cfg.Metrics.Enabled {
		opts.Timer = func(reg *prometheus.Registry) (*metrics.Timer, error) {
			return metrics.NewTimer(reg, ns)
		}
	}
	return opts
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Path, cfg.Log.Level)
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideInstanceID() InstanceID {
	return InstanceID(uuid.New())
}

func provideStateMachine(a bus.Aggregator) *status.Machine {
	return status.NewMachine(a)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, machine *status.Machine, agg bus.Aggregator, id InstanceID, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := machine.Transition(status.Starting); err != nil {
				return err
			}

			// Start metrics server in background.
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("metrics server error", zap.Error(err))
					if err := machine.Transition(status.Error); err != nil {
						logger.Warn("failed to record metrics server failure", zap.Error(err))
					}
				}
			}()

			if err := machine.Transition(status.Running); err != nil {
				return err
			}
			agg.Publish(&Started{Instance: id, At: time.Now()})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := machine.Transition(status.Draining); err != nil {
				logger.Warn("unexpected state at shutdown", zap.Error(err))
			}
			agg.Publish(&Stopping{Instance: id, At: time.Now()})
			srv.Stop(ctx)
			if err := machine.Transition(status.Stopped); err != nil {
				logger.Warn("unexpected state at shutdown", zap.Error(err))
			}
			logger.Info("daemon stopped", zap.Stringer("instance", id))
			return nil
		},
	})
}
