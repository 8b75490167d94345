package traceevent

// MultiSink fans out trace events to multiple sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a MultiSink that emits to all provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Emit sends the event to all underlying sinks and stops at the first error.
func (t *MultiSink) Emit(ev *Event) error {
	for _, s := range t.sinks {
		if err := s.Emit(ev); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes all underlying sinks.
func (t *MultiSink) Flush() error {
	var firstErr error
	for _, s := range t.sinks {
		if err := s.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all underlying sinks.
func (t *MultiSink) Close() error {
	var firstErr error
	for _, s := range t.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
