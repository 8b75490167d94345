package timeline

import "fsyncprof/internal/fsynclog"

// SignalCauses tracks the thread that most recently signaled each handle and
// whose signal has not yet been claimed by a wake.
type SignalCauses struct {
	last map[fsynclog.HandleID]fsynclog.ThreadID
}

// NewSignalCauses creates an empty tracker.
func NewSignalCauses() *SignalCauses {
	return &SignalCauses{last: make(map[fsynclog.HandleID]fsynclog.ThreadID)}
}

// Record notes that tid signaled handle, replacing any unclaimed signal.
func (c *SignalCauses) Record(handle fsynclog.HandleID, tid fsynclog.ThreadID) {
	c.last[handle] = tid
}

// Take removes and returns the signaling thread of handle.
func (c *SignalCauses) Take(handle fsynclog.HandleID) (fsynclog.ThreadID, bool) {
	tid, ok := c.last[handle]
	if ok {
		delete(c.last, handle)
	}
	return tid, ok
}

// Len returns the number of unclaimed signals.
func (c *SignalCauses) Len() int { return len(c.last) }
