package traceevent

// Sink receives trace events in emission order.
type Sink interface {
	// Emit records one event. An error aborts the producer.
	Emit(ev *Event) error

	// Flush ensures all buffered events are written.
	Flush() error

	// Close flushes and finishes the output. It does not close the
	// underlying writer.
	Close() error
}
