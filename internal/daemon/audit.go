package daemon

import (
	"github.com/matheus3301/eventsagg/internal/bus"
	"github.com/matheus3301/eventsagg/internal/status"
	"go.uber.org/zap"
)

// AuditLog writes daemon lifecycle events to the log.
type AuditLog struct {
	logger *zap.Logger
}

// NewAuditLog creates the audit subscriber.
func NewAuditLog(logger *zap.Logger) *AuditLog {
	return &AuditLog{logger: logger.Named("audit")}
}

// SubscribeForEvents registers the audit handlers. Start announcements are
// logged off the publisher's goroutine.
func (a *AuditLog) SubscribeForEvents(agg bus.Aggregator) {
	bus.Subscribe(agg, a.onStatusChanged)
	bus.SubscribeAsync(agg, a.onStarted)
	bus.Subscribe(agg, a.onStopping)
}

func (a *AuditLog) onStatusChanged(ev *status.StatusChanged) error {
	a.logger.Info("status changed",
		zap.String("from", string(ev.From)),
		zap.String("to", string(ev.To)),
		zap.Time("at", ev.At),
	)
	return nil
}

func (a *AuditLog) onStarted(ev *Started) error {
	a.logger.Info("daemon started", zap.Stringer("instance", ev.Instance))
	return nil
}

func (a *AuditLog) onStopping(ev *Stopping) error {
	a.logger.Info("daemon stopping", zap.Stringer("instance", ev.Instance))
	return nil
}
