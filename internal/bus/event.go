package bus

// Event is a value that can be published on the bus. A type becomes an
// event by embedding Tag.
type Event interface {
	event()
}

// Tag marks the embedding type as an Event. It carries no data.
type Tag struct{}

func (Tag) event() {}
