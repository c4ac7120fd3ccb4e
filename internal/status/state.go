package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/eventsagg/internal/bus"
)

// State represents a daemon runtime state.
type State string

const (
	Booting  State = "BOOTING"
	Starting State = "STARTING"
	Running  State = "RUNNING"
	Draining State = "DRAINING"
	Stopped  State = "STOPPED"
	Error    State = "ERROR"
)

// validTransitions defines allowed state transitions.
var validTransitions = map[State][]State{
	Booting:  {Starting, Error},
	Starting: {Running, Error},
	Running:  {Draining, Error},
	Draining: {Stopped, Error},
	Error:    {Booting, Stopped},
}

// StatusChanged is published on every successful transition.
type StatusChanged struct {
	bus.Tag
	From State
	To   State
	At   time.Time
}

// Machine tracks and enforces daemon runtime state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     bus.Aggregator
}

// NewMachine creates a new state machine starting in Booting state. A nil
// aggregator disables StatusChanged events.
func NewMachine(a bus.Aggregator) *Machine {
	return &Machine{
		current: Booting,
		bus:     a,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
// The StatusChanged event is published after the lock is released, so handlers
// may call Current.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		from := m.current
		m.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	from := m.current
	m.current = to
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.Publish(&StatusChanged{From: from, To: to, At: time.Now()})
	}
	return nil
}
