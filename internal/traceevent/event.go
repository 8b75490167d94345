package traceevent

// Phase is the trace-event "ph" value.
type Phase string

const (
	// PhaseComplete is an interval with a start and a duration.
	PhaseComplete Phase = "X"
	// PhaseInstant is a point in time.
	PhaseInstant Phase = "i"
)

// Event is a single trace record. Timestamps are microseconds.
type Event struct {
	Name   string `msgpack:"name"`
	Phase  Phase  `msgpack:"ph"`
	Thread string `msgpack:"tid"` // resolved thread label
	Bucket string `msgpack:"pid"` // timeline bucket
	TS     int64  `msgpack:"ts"`
	Dur    int64  `msgpack:"dur,omitempty"` // PhaseComplete only
}

// Complete builds an interval event spanning [start, end].
func Complete(name, thread, bucket string, start, end int64) Event {
	return Event{
		Name:   name,
		Phase:  PhaseComplete,
		Thread: thread,
		Bucket: bucket,
		TS:     start,
		Dur:    end - start,
	}
}

// Instant builds a point event.
func Instant(name, thread, bucket string, ts int64) Event {
	return Event{
		Name:   name,
		Phase:  PhaseInstant,
		Thread: thread,
		Bucket: bucket,
		TS:     ts,
	}
}
