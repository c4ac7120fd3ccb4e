package logging

import (
	"errors"

	"github.com/matheus3301/eventsagg/internal/bus"
	"go.uber.org/zap"
)

// Reporter logs handler failures reported by the bus.
type Reporter struct {
	logger *zap.Logger
}

// NewReporter creates a Reporter writing to logger.
func NewReporter(logger *zap.Logger) *Reporter {
	return &Reporter{logger: logger.Named("events")}
}

// Report logs err at error level, attributed to origin and ev's type.
func (r *Reporter) Report(origin string, ev bus.Event, err error) {
	fields := []zap.Field{
		zap.String("origin", origin),
		zap.String("event", bus.EventName(ev)),
		zap.Error(err),
	}
	var pe *bus.PanicError
	if errors.As(err, &pe) {
		fields = append(fields, zap.ByteString("stack", pe.Stack))
	}
	r.logger.Error("event handler failed", fields...)
}
