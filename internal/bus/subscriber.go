package bus

// Subscriber is implemented by modules that register their handlers at
// startup.
type Subscriber interface {
	SubscribeForEvents(a Aggregator)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(a Aggregator)

// SubscribeForEvents calls f(a).
func (f SubscriberFunc) SubscribeForEvents(a Aggregator) {
	f(a)
}
