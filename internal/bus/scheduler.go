package bus

import (
	"context"
	"sync"
)

// Tasks is the default Scheduler. Each task runs on its own goroutine and is
// tracked until it returns. Go may be called concurrently with Wait. The
// zero value is ready to use.
type Tasks struct {
	mu      sync.Mutex
	running int
	idle    chan struct{} // closed when running drops to zero; nil while idle
}

// NewTasks creates an empty task tracker.
func NewTasks() *Tasks {
	return &Tasks{}
}

// Go starts task on a new goroutine and returns immediately.
func (t *Tasks) Go(task func()) {
	t.mu.Lock()
	if t.running == 0 {
		t.idle = make(chan struct{})
	}
	t.running++
	t.mu.Unlock()

	go func() {
		defer t.finish()
		task()
	}()
}

func (t *Tasks) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running--
	if t.running == 0 {
		close(t.idle)
		t.idle = nil
	}
}

// Running returns the number of tasks that have not returned yet.
func (t *Tasks) Running() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Wait blocks until the running count drops to zero or ctx is done.
func (t *Tasks) Wait(ctx context.Context) error {
	t.mu.Lock()
	idle := t.idle
	t.mu.Unlock()
	if idle == nil {
		return nil
	}

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
