package bus

import "go.uber.org/zap"

// Scope is an in-flight timing measurement. Stop records the elapsed time.
type Scope interface {
	Stop()
}

// Timer opens named timing scopes around handler and publish calls.
type Timer interface {
	TimeScope(key string) Scope
}

// ErrorReporter receives handler failures. Implementations must not panic
// and must return quickly.
type ErrorReporter interface {
	Report(origin string, ev Event, err error)
}

// Scheduler runs detached handler invocations off the publisher's goroutine.
type Scheduler interface {
	Go(task func())
}

// Capabilities are the collaborators shared by every subscription created
// through one aggregator.
type Capabilities struct {
	Timer     Timer
	Reporter  ErrorReporter
	Scheduler Scheduler

	// Logger records reporters that panic. Nil discards.
	Logger *zap.Logger
}

// NopTimer discards all measurements.
type NopTimer struct{}

// TimeScope returns a scope whose Stop does nothing.
func (NopTimer) TimeScope(string) Scope { return nopScope{} }

type nopScope struct{}

func (nopScope) Stop() {}

// NopReporter discards all reported failures.
type NopReporter struct{}

// Report does nothing.
func (NopReporter) Report(string, Event, error) {}

type goScheduler struct{}

func (goScheduler) Go(task func()) { go task() }

// report hands err to r. A panic from the reporter itself is logged and
// goes no further.
func report(r ErrorReporter, logger *zap.Logger, origin string, ev Event, err error) {
	defer func() {
		if v := recover(); v != nil {
			logger.Warn("error reporter panicked",
				zap.Any("panic", v),
				zap.String("origin", origin),
				zap.String("event", EventName(ev)),
				zap.NamedError("handler_error", err),
			)
		}
	}()
	r.Report(origin, ev, err)
}
