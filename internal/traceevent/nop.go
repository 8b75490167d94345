package traceevent

// discardSink drops every event.
type discardSink struct{}

func (discardSink) Emit(*Event) error { return nil }
func (discardSink) Flush() error      { return nil }
func (discardSink) Close() error      { return nil }

// Discard is the package-level singleton sink that drops events.
var Discard Sink = discardSink{}

// Collector keeps every emitted event in memory.
type Collector struct {
	Events []Event
}

// Emit appends a copy of the event.
func (c *Collector) Emit(ev *Event) error {
	c.Events = append(c.Events, *ev)
	return nil
}

// Flush does nothing.
func (c *Collector) Flush() error { return nil }

// Close does nothing.
func (c *Collector) Close() error { return nil }

// Replay emits collected events into another sink in order.
func Replay(events []Event, sink Sink) error {
	for i := range events {
		if err := sink.Emit(&events[i]); err != nil {
			return err
		}
	}
	return nil
}
