package daemon

import (
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/eventsagg/internal/bus"
)

// InstanceID identifies one daemon run.
type InstanceID uuid.UUID

func (id InstanceID) String() string { return uuid.UUID(id).String() }

// Started is published once every start hook has run.
type Started struct {
	bus.Tag
	Instance InstanceID
	At       time.Time
}

// Stopping is published when shutdown begins.
type Stopping struct {
	bus.Tag
	Instance InstanceID
	At       time.Time
}
